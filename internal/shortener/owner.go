package shortener

// ownerMayModify is the ownership policy for mutating operations: an unowned
// link may be modified by anyone, an owned link only by a caller presenting
// the matching tag. Callers report a denial as NotFound so an owned link's
// existence is not revealed to other callers.
//
// The tag is caller-supplied and unauthenticated; this is weak-trust scoping,
// not access control. Checking it outside the mutation's transaction is safe
// because the owner tag never changes after creation.
func ownerMayModify(linkOwner, caller string) bool {
	return linkOwner == "" || linkOwner == caller
}
