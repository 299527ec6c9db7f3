package testutil

import "testing"

// Given, When and Then nest t.Run calls so scenario tests read as specs
// without a BDD framework. Each step fails independently.
func Given(t *testing.T, context string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("given "+context, fn)
}

func When(t *testing.T, action string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("when "+action, fn)
}

func Then(t *testing.T, outcome string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run("then "+outcome, fn)
}
