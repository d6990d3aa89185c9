package errs

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := E(ProviderNetwork, "source.Search", io.ErrUnexpectedEOF)

	assert.True(t, errors.Is(err, Sentinel(ProviderNetwork)))
	assert.False(t, errors.Is(err, Sentinel(ProviderParse)))
	assert.False(t, errors.Is(err, Sentinel(KindUnknown)))
}

func TestKindMatchingThroughWrapping(t *testing.T) {
	err := fmt.Errorf("refresh failed: %w", E(StorageQuery, "database.UpsertBook", errors.New("locked")))

	assert.True(t, errors.Is(err, Sentinel(StorageQuery)))
	assert.Equal(t, StorageQuery, KindOf(err))
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := E(StorageSchema, "database.Migrate", cause)

	assert.True(t, errors.Is(err, cause))
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t,
		"royalroad.DownloadChapter: precondition: chapter has no url",
		Errorf(Precondition, "royalroad.DownloadChapter", "chapter has no url").Error(),
	)
	assert.Equal(t,
		"database.Migrate: storage schema",
		(&Error{Kind: StorageSchema, Op: "database.Migrate"}).Error(),
	)
}
