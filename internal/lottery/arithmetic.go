package lottery

import (
	"fmt"
	"math"
)

func addInt64AndU64Checked(a int64, b uint64, field string) (int64, error) {
	if a < 0 {
		return 0, fmt.Errorf("%s: negative base %d", field, a)
	}
	if b > uint64(math.MaxInt64)-uint64(a) {
		return 0, fmt.Errorf("%s overflows int64", field)
	}
	return a + int64(b), nil
}
