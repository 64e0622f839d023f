package rational

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReduces(t *testing.T) {
	assert := assert.New(t)

	r, err := New(6, 8)
	assert.NoError(err)
	assert.Equal(Rational{Num: 3, Den: 4}, r)

	r, err = New(4, 4)
	assert.NoError(err)
	assert.Equal(Rational{Num: 1, Den: 1}, r)
}

func TestNewNormalizesSign(t *testing.T) {
	r, err := New(3, -4)
	assert.NoError(t, err)
	assert.Equal(t, Rational{Num: -3, Den: 4}, r)
}

func TestNewRejectsZeroDenominator(t *testing.T) {
	_, err := New(1, 0)
	assert.Error(t, err)
}

func TestValueEqualAsMapKey(t *testing.T) {
	counts := make(map[Rational]int)
	counts[MustNew(2, 4)]++
	counts[MustNew(1, 2)]++
	counts[MustNew(3, 6)]++

	assert.Equal(t, 1, len(counts))
	assert.Equal(t, 3, counts[MustNew(1, 2)])
}

func TestParse(t *testing.T) {
	r, err := Parse("6/8")
	assert.NoError(t, err)
	assert.Equal(t, MustNew(3, 4), r)

	_, err = Parse("abc")
	assert.Error(t, err)
	_, err = Parse("3/0")
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	assert.Equal(t, "3/4", MustNew(3, 4).String())
}
