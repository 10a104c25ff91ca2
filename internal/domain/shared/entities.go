package shared

// User is the minimal projection of a registered bidder. The service only
// reads it to resolve the winner's display name at finalization time.
type User struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
}
