package linkshare

import (
	"context"
	"strconv"

	"github.com/taaskly/taaskly/internal/app/ports"
)

// caller is the resolved origin of a webhook change: the community is
// mandatory, the user is nil for an unlinked caller.
type caller struct {
	community ports.Community
	user      *ports.User
}

// resolveCaller looks up the calling community and user. A community
// that does not resolve fails with ErrUnknownCommunity; an unknown user
// is not an error.
func (s *Service) resolveCaller(ctx context.Context, value Value) (caller, error) {
	communityID, err := strconv.ParseInt(value.Community.ID, 10, 64)
	if err != nil {
		return caller{}, ErrUnknownCommunity
	}
	community, err := s.store.FindCommunityByID(ctx, communityID)
	if err != nil {
		return caller{}, err
	}
	if community == nil {
		return caller{}, ErrUnknownCommunity
	}

	var user *ports.User
	if value.User.ID != "" {
		user, err = s.store.FindUserByWorkplaceID(ctx, value.User.ID)
		if err != nil {
			return caller{}, err
		}
	}
	return caller{community: *community, user: user}, nil
}
