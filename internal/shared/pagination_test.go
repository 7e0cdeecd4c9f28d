package shared

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageFromQuery(t *testing.T) {
	cases := map[string]int{
		"":                   1,
		"abc":                1,
		"-3":                 1,
		"0":                  1,
		"7":                  7,
		"922337203685477581": MaxPage,
	}
	for raw, want := range cases {
		assert.Equal(t, want, PageFromQuery(url.Values{PageParam: {raw}}), raw)
	}
}

func TestOffsetAtMaxPageIsPositive(t *testing.T) {
	p := NewPagination(MaxPage, 100, 0)
	assert.Greater(t, p.Offset(), 0)
}
