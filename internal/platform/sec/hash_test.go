// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slmaher/ExpenseReport/internal/platform/sec"
)

/*
TestHashPassword_RoundTrip verifies that a hashed password checks out and a
wrong one does not.
*/
func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := sec.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, sec.CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, sec.CheckPasswordHash("wrong password", hash))
}

/*
TestCheckPasswordHash_EmptyHash verifies that accounts without a stored hash
(Google-only accounts) can never authenticate with a password.
*/
func TestCheckPasswordHash_EmptyHash(t *testing.T) {
	assert.False(t, sec.CheckPasswordHash("anything", ""))
	assert.False(t, sec.CheckPasswordHash("", ""))
}
