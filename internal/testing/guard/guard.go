package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("HOMEWARD_TEST_MODE") == "" {
			_ = os.Setenv("HOMEWARD_TEST_MODE", "1")
		}
	})
}
