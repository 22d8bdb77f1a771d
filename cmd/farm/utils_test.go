// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, 16, normalizeCacheSize(1))
	// capped to half of the physical memory
	assert.Less(t, normalizeCacheSize(1<<40), 1<<40)
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("HOME", "/home/farmer")
	assert.Contains(t, defaultDataDir(), "/home/farmer")
}
