package actions

// Labels managed by the built-in actions. User-applied labels are never
// touched.
const (
	sizePrefix       = "size/"
	verifiedLabel    = "verified"
	approvedPrefix   = "approved-"
	canBeMergedLabel = "can-be-merged"
)

// blockingLabels prevent the can-be-merged label regardless of approvals.
var blockingLabels = []string{"wip", "hold", "do-not-merge"}

// sizeBucket maps a total change count to a size label suffix.
func sizeBucket(total int) string {
	switch {
	case total < 20:
		return "XS"
	case total < 50:
		return "S"
	case total < 100:
		return "M"
	case total < 300:
		return "L"
	case total < 500:
		return "XL"
	default:
		return "XXL"
	}
}
