package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("13800000000"))
	assert.True(t, IsValidPhone("19912345678"))
	assert.False(t, IsValidPhone("12800000000"))
	assert.False(t, IsValidPhone("1380000000"))
	assert.False(t, IsValidPhone("+8613800000000"))
}

func TestIsValidIDCard(t *testing.T) {
	assert.True(t, IsValidIDCard("11010519491231002X"))
	assert.True(t, IsValidIDCard("11010519491231002x"))
	assert.True(t, IsValidIDCard("110101199003077758"))
	assert.False(t, IsValidIDCard("110101199003077757"))
	assert.False(t, IsValidIDCard("11010519491331002X"))
	assert.False(t, IsValidIDCard("1101051949123100"))
}

func TestLength(t *testing.T) {
	assert.True(t, IsBlank("  \t"))
	assert.False(t, IsBlank(" a "))
	assert.True(t, MaxLength("张三丰", 3))
	assert.False(t, MaxLength("张三丰a", 3))
}
