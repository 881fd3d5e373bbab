package hub

import (
	"os"
	"testing"

	"github.com/irongraph/irongraph/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
