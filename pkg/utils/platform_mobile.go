//go:build mobile

package utils

// IsMobile 移动端编译时返回 true
func IsMobile() bool {
	return true
}
