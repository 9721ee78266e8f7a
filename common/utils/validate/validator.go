package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	phoneRegex  = regexp.MustCompile(`^1[3-9]\d{9}$`)
	idCardRegex = regexp.MustCompile(`^[1-9]\d{5}(19|20)\d{2}(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])\d{3}[\dXx]$`)
)

var (
	idCardWeights = [17]int{7, 9, 10, 5, 8, 4, 2, 1, 6, 3, 7, 9, 10, 5, 8, 4, 2}
	idCardChecks  = [11]byte{'1', '0', 'X', '9', '8', '7', '6', '5', '4', '3', '2'}
)

// IsValidPhone 中国大陆手机号
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// IsValidIDCard 18 位身份证号，含校验位
func IsValidIDCard(idCard string) bool {
	if !idCardRegex.MatchString(idCard) {
		return false
	}

	sum := 0
	for i, w := range idCardWeights {
		sum += int(idCard[i]-'0') * w
	}
	last := idCard[17]
	if last == 'x' {
		last = 'X'
	}
	return idCardChecks[sum%11] == last
}

// IsBlank 判断字符串为空白
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// MaxLength 按字符数判断长度不超过 max
func MaxLength(s string, max int) bool {
	return utf8.RuneCountInString(s) <= max
}
