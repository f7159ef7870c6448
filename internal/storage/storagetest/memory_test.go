package storagetest

import (
	"testing"

	"github.com/aanand-mishra/student-management-api/internal/storage"
)

func TestMemoryContract(t *testing.T) {
	Run(t, func(t *testing.T) storage.Storage { return NewMemory() })
}
