package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedis_BadURL(t *testing.T) {
	_, err := NewRedis("not-a-redis-url", 10)
	assert.Error(t, err)
}
