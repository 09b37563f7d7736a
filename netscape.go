package biscuit

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// netscapeHeader opens every cookies.txt file; curl and wget use it to
// recognize the format.
const netscapeHeader = "# Netscape HTTP Cookie File\n"

// WriteNetscape renders cookies in the Netscape cookies.txt format: one
// tab-separated line per record, order preserved. Zero records yield a valid
// header-only file.
func WriteNetscape(w io.Writer, cookies []Cookie) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(netscapeHeader); err != nil {
		return err
	}

	for _, c := range cookies {
		includeSubdomains := strings.HasPrefix(c.Domain, ".")
		var expires int64
		if c.Expires != nil {
			expires = c.Expires.Unix()
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			c.Domain,
			netscapeBool(includeSubdomains),
			c.Path,
			netscapeBool(c.Secure),
			expires,
			c.Name,
			c.Value,
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func netscapeBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
