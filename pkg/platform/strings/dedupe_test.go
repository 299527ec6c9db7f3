package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	t.Run("keeps nil and empty inputs as they are", func(t *testing.T) {
		assert.Nil(t, DedupeAndTrim(nil))
		assert.Equal(t, []string{}, DedupeAndTrim([]string{}))
	})

	t.Run("recommendations keep their priority order", func(t *testing.T) {
		got := DedupeAndTrim([]string{
			"Escalate the file for manual fraud review.",
			" Resolve immediately the discrepancies in: rfc. ",
			"Escalate the file for manual fraud review.",
			"",
			"Confirm with the client: address.",
		})
		assert.Equal(t, []string{
			"Escalate the file for manual fraud review.",
			"Resolve immediately the discrepancies in: rfc.",
			"Confirm with the client: address.",
		}, got)
	})

	t.Run("field names are case sensitive", func(t *testing.T) {
		assert.Equal(t, []string{"rfc", "RFC"}, DedupeAndTrim([]string{"rfc", "RFC", " rfc"}))
	})
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList("   "))
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitList("a:9092, b:9092,,a:9092"))
	assert.Equal(t, []string{"broker:9092"}, SplitList(" broker:9092 "))
}
