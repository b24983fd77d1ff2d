package events

import "encoding/base64"

// MaxInputAudioBytes caps the decoded size of a single audio append payload.
const MaxInputAudioBytes = 15 * 1024 * 1024

// ValidateBase64Audio checks that s is well-formed standard base64 and that
// its decoded size stays within MaxInputAudioBytes. The size is computed from
// the encoded length and padding, so the payload is never decoded.
func ValidateBase64Audio(s string) error {
	if s == "" {
		return validationErrorf("audio payload is empty")
	}
	if len(s)%4 != 0 {
		return validationErrorf("audio payload is not valid base64: length %d is not a multiple of 4", len(s))
	}
	padding := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '=':
			padding++
			if padding > 2 {
				return validationErrorf("audio payload is not valid base64: more than two padding characters")
			}
		case padding > 0:
			return validationErrorf("audio payload is not valid base64: padding before end of data")
		case !isBase64Char(c):
			return validationErrorf("audio payload is not valid base64: invalid character %q", c)
		}
	}
	if n := DecodedBase64Len(s); n > MaxInputAudioBytes {
		return validationErrorf("audio payload too large: %d bytes decoded, limit is %d", n, MaxInputAudioBytes)
	}
	return nil
}

// DecodedBase64Len returns the decoded byte count of a padded base64 string
// without decoding it. The input must already have a length divisible by 4.
func DecodedBase64Len(s string) int {
	padding := 0
	for i := len(s) - 1; i >= 0 && s[i] == '='; i-- {
		padding++
	}
	return len(s)/4*3 - padding
}

func isBase64Char(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '+', c == '/':
		return true
	}
	return false
}

func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// EncodeAudio encodes raw audio bytes for an append payload.
func EncodeAudio(pcm []byte) string {
	return base64.StdEncoding.EncodeToString(pcm)
}
