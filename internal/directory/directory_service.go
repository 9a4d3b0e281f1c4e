package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	directoryerrors "go-hris-leave/internal/directory/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const ProfileKeyPrefix = "directory:profile:"

func GetProfileKey(employeeID int64) string {
	return ProfileKeyPrefix + strconv.FormatInt(employeeID, 10)
}

//go:generate mockgen -source=directory_service.go -destination=mock/directory_service_mock.go -package=mock
type Service interface {
	GetProfile(ctx context.Context, employeeID int64) (Profile, error)
	GetReviewers(ctx context.Context, employeeID int64) (Reviewers, error)
	InvalidateProfile(ctx context.Context, employeeID int64) error
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	ttl    time.Duration
	sf     *singleflight.Group
	logger *zap.Logger
}

// NewService builds the directory lookup. rdb may be nil, in which case
// every lookup goes to the database.
func NewService(repo Repository, rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("directory.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("directory.service")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		ttl:    ttl,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) GetProfile(ctx context.Context, employeeID int64) (Profile, error) {
	cacheKey := GetProfileKey(employeeID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var p Profile
			if json.Unmarshal([]byte(cached), &p) == nil {
				return p, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("profile cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	// Fan-out resolves the same submitter for every recipient at once.
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		e, found, err := s.repo.FindByID(ctx, employeeID)
		if err != nil {
			s.logger.Error("find employee failed", zap.Int64("employee_id", employeeID), zap.Error(err))
			return nil, err
		}
		if !found {
			return nil, directoryerrors.ErrEmployeeNotFound
		}

		p := mapToProfile(*e)
		if s.rdb != nil {
			if data, err := json.Marshal(p); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
					s.logger.Warn("profile cache write failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		return p, nil
	})
	if err != nil {
		return Profile{}, err
	}

	return v.(Profile), nil
}

func (s *service) GetReviewers(ctx context.Context, employeeID int64) (Reviewers, error) {
	line, found, err := s.repo.FindReportingLine(ctx, employeeID)
	if err != nil {
		s.logger.Error("find reporting line failed", zap.Int64("employee_id", employeeID), zap.Error(err))
		return Reviewers{}, err
	}
	if !found || line.ReportingManagerID == 0 {
		s.logger.Warn("reporting line not configured", zap.Int64("employee_id", employeeID))
		return Reviewers{}, directoryerrors.ErrReviewerNotConfigured
	}

	r := Reviewers{ReviewerID: line.ReportingManagerID}
	if line.HeadOfDepartmentID != nil && *line.HeadOfDepartmentID != 0 {
		r.CC = append(r.CC, *line.HeadOfDepartmentID)
	}
	return r, nil
}

func (s *service) InvalidateProfile(ctx context.Context, employeeID int64) error {
	if s.rdb == nil {
		return nil
	}
	if err := s.rdb.Del(ctx, GetProfileKey(employeeID)).Err(); err != nil {
		return fmt.Errorf("invalidate profile %d: %w", employeeID, err)
	}
	return nil
}
