package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_PrefixAndOrder(t *testing.T) {
	prev := New(PrefixDonation)
	assert.True(t, strings.HasPrefix(prev, PrefixDonation))

	for i := 0; i < 100; i++ {
		next := New(PrefixDonation)
		assert.Greater(t, next, prev)
		prev = next
	}
}
