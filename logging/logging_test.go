package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gitter-badger/reproto/logging"
)

func TestNewTagsComponentField(t *testing.T) {
	entry := logging.New("env")
	assert.Equal(t, "env", entry.Data["component"])
}
