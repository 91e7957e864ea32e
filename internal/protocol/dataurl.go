package protocol

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// base64Marker separates the mime header from the encoded body in upload
// payloads: "data:image/png;base64,iVBOR...".
const base64Marker = ";base64,"

// ParseDataURL splits an upload payload into the file extension implied by
// its mime header (the substring after the last '/') and the decoded bytes.
func ParseDataURL(s string) (ext string, data []byte, err error) {
	head, body, found := strings.Cut(s, base64Marker)
	if !found {
		return "", nil, fmt.Errorf("%w: missing %q", ErrBadDataURL, base64Marker)
	}
	if i := strings.LastIndexByte(head, '/'); i >= 0 {
		head = head[i+1:]
	}
	data, err = base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return head, data, nil
}
