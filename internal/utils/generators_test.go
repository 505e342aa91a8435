package utils_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zenjaura/marketplace/internal/utils"
)

func TestGenerateOrderNumber(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	number, err := utils.GenerateOrderNumber(now)

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ORD-1700000000123-\d{4}$`), number)
}
