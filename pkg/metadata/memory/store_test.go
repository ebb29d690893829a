package memory_test

import (
	"testing"

	"github.com/marmos91/hubd/pkg/metadata"
	"github.com/marmos91/hubd/pkg/metadata/memory"
	"github.com/marmos91/hubd/pkg/metadata/storetest"
)

func TestMemoryStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) (metadata.MetadataStore, func()) {
		return memory.New(), func() {}
	})
}
