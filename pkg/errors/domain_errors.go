package errors

// Domain errors shared across services. Keeping them here gives handlers and
// tests one canonical instance to compare against.
var (
	ErrUserNotFound     = NotFound("user not found")
	ErrUsernameTaken    = AlreadyExists("username is already taken")
	ErrBadCredential    = Unauthorized("invalid credentials")
	ErrSelfReference    = InvalidArg("cannot befriend yourself")
	ErrNoSuchRequest    = FailedPrecondition("no pending friend request from that user")
	ErrNotFriends       = Forbidden("users are not friends")
	ErrUnknownRecipient = NotFound("recipient not found")
	ErrEmptyMessage     = InvalidArg("message text must not be empty")
	ErrMissingField     = InvalidArg("required field missing")
)
