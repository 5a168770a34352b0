package booking

import "errors"

var (
	// ErrInvalidInterval marks a malformed date range (end before start).
	ErrInvalidInterval = errors.New("end date must not be before start date")

	// ErrRoomUnavailable means the room's catalog status is not available.
	ErrRoomUnavailable = errors.New("room is not available")

	// ErrDateConflict means an approved or active rental already covers at
	// least one day of the requested range.
	ErrDateConflict = errors.New("dates conflict with an existing rental")

	// ErrRoomNoLongerAvailable is returned by Approve when another rental
	// occupied the room between creation and approval.
	ErrRoomNoLongerAvailable = errors.New("room is no longer available")

	// ErrInvalidState marks a lifecycle transition from the wrong state.
	ErrInvalidState = errors.New("invalid rental state for this operation")

	// ErrNotOwner means the cancelling requester does not own the rental.
	ErrNotOwner = errors.New("rental does not belong to requester")
)
