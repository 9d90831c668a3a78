package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hirelane/recruitment-service/internal/domain"
	"github.com/hirelane/recruitment-service/internal/media"
	"github.com/hirelane/recruitment-service/internal/repository"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

const maxBioLength = 2000

// Account is the signed-in user's own view.
type Account struct {
	User       domain.User
	Groups     []domain.Group
	Profile    domain.Profile
	NationalID *domain.NationalID
}

// PublicProfile is what other signed-in users may see.
type PublicProfile struct {
	Username   string
	FullName   string
	Gender     domain.Gender
	Bio        string
	PictureKey string
}

// ProfileInput updates profile presentation fields.
type ProfileInput struct {
	Gender *domain.Gender
	Bio    *string
}

// ProfileService manages user profiles and picture uploads.
type ProfileService struct {
	users    repository.UserRepository
	natids   repository.NationalIDRepository
	pictures media.PictureStore
}

// NewProfileService constructs the service. pictures may be nil when no bucket is configured.
func NewProfileService(users repository.UserRepository, natids repository.NationalIDRepository, pictures media.PictureStore) *ProfileService {
	return &ProfileService{users: users, natids: natids, pictures: pictures}
}

func (s *ProfileService) profileFor(ctx context.Context, userID string) (domain.Profile, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return domain.Profile{UserID: userID}, nil
		}
		return domain.Profile{}, err
	}
	return *profile, nil
}

// GetAccount returns the caller's user, groups, profile and national id.
func (s *ProfileService) GetAccount(ctx context.Context, userID string) (*Account, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	groups, err := s.users.GroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	account := &Account{User: *user, Groups: groups, Profile: profile}
	if rec, err := s.natids.GetByUserID(ctx, userID); err == nil {
		account.NationalID = rec
	} else if !isNotFound(err) {
		return nil, err
	}
	return account, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.Profile, error) {
	profile, err := s.profileFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	errs := fieldErrors{}
	if in.Gender != nil {
		if in.Gender.Valid() {
			profile.Gender = *in.Gender
		} else {
			errs.add("gender", "is not a valid choice")
		}
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if len(bio) > maxBioLength {
			errs.add("bio", "is too long")
		}
		profile.Bio = bio
	}
	if err := errs.err("profile is invalid"); err != nil {
		return nil, err
	}
	if err := s.users.UpsertProfile(ctx, &profile); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return &profile, nil
}

// PictureUpload presigns an upload for a new profile picture and records its key.
func (s *ProfileService) PictureUpload(ctx context.Context, userID, filename, contentType string) (*media.Upload, error) {
	if s.pictures == nil {
		return nil, apperrors.NewDomainError("MEDIA_DISABLED", "picture uploads are not configured", http.StatusServiceUnavailable, nil)
	}
	upload, err := s.pictures.PresignUpload(ctx, userID, filename, contentType)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedPicture) {
			return nil, apperrors.NewValidationError("picture is invalid", map[string]any{"content_type": "must be a jpeg, png, gif or webp image"})
		}
		return nil, err
	}
	profile, err := s.profileFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.PictureKey = upload.Key
	if err := s.users.UpsertProfile(ctx, &profile); err != nil {
		return nil, err
	}
	return &upload, nil
}

// PublicProfile looks up an active user by username.
func (s *ProfileService) PublicProfile(ctx context.Context, username string) (*PublicProfile, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil || !user.IsActive {
		if err == nil || isNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return nil, err
	}
	profile, err := s.profileFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{
		Username:   user.Username,
		FullName:   user.FullName(),
		Gender:     profile.Gender,
		Bio:        profile.Bio,
		PictureKey: profile.PictureKey,
	}, nil
}
