// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func codeString(b []byte) string {
	switch len(b) {
	case 1:
		return fmt.Sprintf("%02X", b[0])
	case 2:
		return fmt.Sprintf("%02X %02X", b[0], b[1])
	case 3:
		return fmt.Sprintf("%02X %02X %02X", b[0], b[1], b[2])
	default:
		return ""
	}
}

func stringToBool(s string) (bool, error) {
	s = strings.ToLower(s)
	switch s {
	case "0", "false", "off":
		return false, nil
	case "1", "true", "on":
		return true, nil
	default:
		return false, errors.Errorf("invalid bool value '%s'", s)
	}
}

// Parse a numeric literal. A '$' or '0x' prefix selects hexadecimal and a
// '%' prefix selects binary. Unprefixed literals are decimal, or
// hexadecimal when 'hexMode' is set. A leading '-' negates the value.
func parseNumber(s string, hexMode bool) (int64, error) {
	str, neg := s, false
	if strings.HasPrefix(str, "-") {
		str, neg = str[1:], true
	}

	base := 10
	if hexMode {
		base = 16
	}
	switch {
	case strings.HasPrefix(str, "$"):
		str, base = str[1:], 16
	case strings.HasPrefix(str, "0x"), strings.HasPrefix(str, "0X"):
		str, base = str[2:], 16
	case strings.HasPrefix(str, "%"):
		str, base = str[1:], 2
	}

	v, err := strconv.ParseInt(str, base, 64)
	if err != nil {
		return 0, errors.Errorf("invalid number '%s'", s)
	}
	if neg {
		v = -v
	}
	return v, nil
}

var hexString = "0123456789ABCDEF"

func addrToBuf(addr uint16, b []byte) {
	b[0] = hexString[(addr>>12)&0xf]
	b[1] = hexString[(addr>>8)&0xf]
	b[2] = hexString[(addr>>4)&0xf]
	b[3] = hexString[addr&0xf]
}

func byteToBuf(v byte, b []byte) {
	b[0] = hexString[(v>>4)&0xf]
	b[1] = hexString[v&0xf]
}

func toPrintableChar(v byte) byte {
	switch {
	case v >= 32 && v < 127:
		return v
	case v >= 160 && v < 255:
		return v - 128
	default:
		return '.'
	}
}
