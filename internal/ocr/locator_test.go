package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saskaita/invoice-pipeline/internal/coords"
)

type stubRunner struct {
	stdout []byte
	err    error
	calls  int
}

func (r *stubRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, []byte, error) {
	r.calls++
	return r.stdout, nil, r.err
}

func TestBucketBoxSeriesNumber(t *testing.T) {
	assert.Equal(t, coords.Box{X: 65, Y: 8, Width: 25, Height: 3}, bucketBox("AMSF 0001", 0))
	assert.Equal(t, coords.Box{X: 65, Y: 8, Width: 25, Height: 3}, bucketBox("SF-2024-001", 7))
}

func TestBucketBoxAmounts(t *testing.T) {
	assert.Equal(t, coords.Box{X: 70, Y: 20, Width: 20, Height: 3}, bucketBox("121.00", 0))
	assert.Equal(t, coords.Box{X: 70, Y: 28, Width: 20, Height: 3}, bucketBox("121.00", 1))
	// index wraps modulo 5
	assert.Equal(t, coords.Box{X: 70, Y: 20, Width: 20, Height: 3}, bucketBox("121.00", 5))
	assert.Equal(t, coords.Box{X: 70, Y: 44, Width: 20, Height: 3}, bucketBox("99,99 €", 3))
}

func TestBucketBoxCompanyNames(t *testing.T) {
	assert.Equal(t, coords.Box{X: 10, Y: 25, Width: 35, Height: 3}, bucketBox("UAB Testas", 0))
	assert.Equal(t, coords.Box{X: 10, Y: 33, Width: 35, Height: 3}, bucketBox("MB Paslaugos", 1))
	assert.Equal(t, coords.Box{X: 10, Y: 41, Width: 35, Height: 3}, bucketBox("VšĮ Centras", 2))
}

func TestBucketBoxDates(t *testing.T) {
	assert.Equal(t, coords.Box{X: 65, Y: 12, Width: 20, Height: 3}, bucketBox("2024-03-15", 0))
	assert.Equal(t, coords.Box{X: 65, Y: 16, Width: 20, Height: 3}, bucketBox("2024-04-15", 1))
}

func TestBucketBoxCompanyCodes(t *testing.T) {
	assert.Equal(t, coords.Box{X: 15, Y: 35, Width: 25, Height: 3}, bucketBox("123456789", 0))
	assert.Equal(t, coords.Box{X: 15, Y: 41, Width: 25, Height: 3}, bucketBox("123456789012", 1))
	// 8 digits is not a company code; falls through to the grid
	assert.NotEqual(t, coords.Box{X: 15, Y: 35, Width: 25, Height: 3}, bucketBox("12345678", 0))
}

func TestBucketBoxDefaultGrid(t *testing.T) {
	// width is 1.5 per rune, capped at 30
	assert.Equal(t, coords.Box{X: 10, Y: 50, Width: 6, Height: 3}, bucketBox("abcd", 0))
	assert.Equal(t, coords.Box{X: 30, Y: 50, Width: 6, Height: 3}, bucketBox("abcd", 1))
	assert.Equal(t, coords.Box{X: 10, Y: 58, Width: 6, Height: 3}, bucketBox("abcd", 4))

	long := bucketBox("labai ilgas prekės pavadinimas čia", 0)
	assert.Equal(t, 30.0, long.Width)
}

func TestBucketBoxDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, bucketBox("Konsultacija", 3), bucketBox("Konsultacija", 3))
	}
}

func TestLocateReturnsBoxForEveryTerm(t *testing.T) {
	runner := &stubRunner{stdout: []byte("UAB Testas\nSF-2024-001\n121.00")}
	l := NewLocator(Config{}, runner, nil)

	terms := []string{"SF-2024-001", "UAB Testas", "121.00", "kažkas kita"}
	text, boxes := l.Locate(context.Background(), []byte("jpeg"), terms)

	require.Len(t, boxes, len(terms))
	for _, term := range terms {
		assert.Contains(t, boxes, term)
	}
	assert.Contains(t, text, "UAB Testas")
}

func TestLocateDegradesWhenOCRFails(t *testing.T) {
	runner := &stubRunner{err: errors.New("tesseract: command not found")}
	l := NewLocator(Config{}, runner, nil)

	terms := []string{"SF-2024-001", "121.00"}
	text, boxes := l.Locate(context.Background(), []byte("jpeg"), terms)

	assert.Empty(t, text)
	require.Len(t, boxes, len(terms))
	assert.Equal(t, coords.Box{X: 65, Y: 8, Width: 25, Height: 3}, boxes["SF-2024-001"])
	assert.Equal(t, coords.Box{X: 70, Y: 28, Width: 20, Height: 3}, boxes["121.00"])
}
