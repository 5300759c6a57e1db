package erp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Normalization Tests
// ---------------------------------------------------------------------------

func TestNormalizeFields(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []Field
	}{
		{
			name:  "nil input",
			input: nil,
			want:  nil,
		},
		{
			name:  "bare single field",
			input: Field{Name: "UDF_COLOR", Value: "red"},
			want:  []Field{{Name: "UDF_COLOR", Value: "red"}},
		},
		{
			name:  "pointer to single field",
			input: &Field{Name: "UDF_COLOR", Value: "red"},
			want:  []Field{{Name: "UDF_COLOR", Value: "red"}},
		},
		{
			name: "field list",
			input: []Field{
				{Name: "UDF_COLOR", Value: "red"},
				{Name: "UDF_SIZE", Value: "L"},
			},
			want: []Field{
				{Name: "UDF_COLOR", Value: "red"},
				{Name: "UDF_SIZE", Value: "L"},
			},
		},
		{
			name:  "empty list",
			input: []Field{},
			want:  []Field{},
		},
		{
			name:  "unrecognized type",
			input: 42,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFields(tt.input))
		})
	}
}

// The service returns a bare object for one-element sets; unpacking either
// shape must give the same result.
func TestUnpackFields_SingleObjectEqualsList(t *testing.T) {
	field := Field{Name: "UDF_NOTE", Value: "gift wrap"}

	fromObject := UnpackFields(field)
	fromList := UnpackFields([]Field{field})

	assert.Equal(t, fromList, fromObject)
	assert.Equal(t, map[string]string{"UDF_NOTE": "gift wrap"}, fromObject)
}

func TestUnpackFields_LastWriteWins(t *testing.T) {
	got := UnpackFields([]Field{
		{Name: "UDF_COLOR", Value: "red"},
		{Name: "UDF_COLOR", Value: "blue"},
	})
	assert.Equal(t, map[string]string{"UDF_COLOR": "blue"}, got)
}

// ---------------------------------------------------------------------------
// Pack Tests
// ---------------------------------------------------------------------------

func TestPackFields_RoundTrip(t *testing.T) {
	data := map[string]string{
		"UDF_COLOR": "red",
		"UDF_SIZE":  "L",
		"UDF_NOTE":  "fragile",
	}

	packed := PackFields(data, nil)
	require.Len(t, packed, len(data))

	assert.Equal(t, data, UnpackFields(packed))
}

func TestPackFields_UpdatesInPlace(t *testing.T) {
	existing := []Field{
		{Name: "UDF_COLOR", Value: "red"},
		{Name: "UDF_SIZE", Value: "L"},
	}

	packed := PackFields(map[string]string{"UDF_COLOR": "blue"}, existing)

	require.Len(t, packed, 2)
	assert.Equal(t, Field{Name: "UDF_COLOR", Value: "blue"}, packed[0])
	assert.Equal(t, Field{Name: "UDF_SIZE", Value: "L"}, packed[1])
}

func TestPackFields_AppendsNewNames(t *testing.T) {
	existing := []Field{{Name: "UDF_COLOR", Value: "red"}}

	packed := PackFields(map[string]string{"UDF_SIZE": "L"}, existing)

	require.Len(t, packed, 2)
	assert.Equal(t, Field{Name: "UDF_COLOR", Value: "red"}, packed[0])
	assert.Equal(t, Field{Name: "UDF_SIZE", Value: "L"}, packed[1])
}

func TestPackFields_NeverRemoves(t *testing.T) {
	existing := []Field{
		{Name: "UDF_KEEP", Value: "kept"},
		{Name: "UDF_ALSO", Value: "untouched"},
	}

	packed := PackFields(map[string]string{}, existing)
	assert.Equal(t, existing, packed)
}

func TestPackFields_Deterministic(t *testing.T) {
	data := map[string]string{
		"UDF_B": "2",
		"UDF_A": "1",
		"UDF_C": "3",
	}

	first := PackFields(data, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, PackFields(data, nil))
	}
}
