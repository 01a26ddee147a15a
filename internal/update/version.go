package update

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// NormalizeVersion turns release tags such as "v.0.3" or "v0.3" into "0.3".
func NormalizeVersion(tag string) string {
	v := strings.TrimSpace(tag)
	v = strings.TrimPrefix(v, "v")
	v = strings.TrimPrefix(v, "V")
	v = strings.TrimPrefix(v, ".")
	return v
}

// CompareVersions returns -1, 0 or 1 comparing a to b numerically per dotted
// segment, so "0.9" < "1.0" and "0.10" > "0.9".
func CompareVersions(a, b string) int {
	a, b = NormalizeVersion(a), NormalizeVersion(b)

	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return compareSegments(a, b)
}

// compareSegments handles versions semver rejects, such as four segments.
// Non-numeric segments count as zero.
func compareSegments(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y int
		if i < len(as) {
			x, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			y, _ = strconv.Atoi(bs[i])
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}
