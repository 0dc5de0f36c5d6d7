package cache

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/gilchrisn/graph-motif-service/pkg/models"
)

// namespace scopes the UUIDv5 ids of cache entries
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/gilchrisn/graph-motif-service/cache"))

// Fingerprint returns the readable name of a cache key and the stable
// storage id derived from it. The name is for logs and may be ambiguous when
// labels contain underscores; the id is derived from a length-prefixed
// encoding, so keys differing in any field never share an id.
func Fingerprint(key models.CacheKey) (string, string) {
	degree := strconv.FormatFloat(key.Degree, 'g', -1, 64)

	name := fmt.Sprintf("%s_%s-s%d-d%s", key.Group.Cohort, key.Group.Metric, key.MotifSize, degree)
	if key.Random {
		name = "RAND-" + name
	}

	canonical := fmt.Sprintf("%d:%s|%d:%s|%d|%s|%t",
		len(key.Group.Cohort), key.Group.Cohort,
		len(key.Group.Metric), key.Group.Metric,
		key.MotifSize, degree, key.Random,
	)
	return name, uuid.NewSHA1(namespace, []byte(canonical)).String()
}
