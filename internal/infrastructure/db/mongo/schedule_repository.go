package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/silab/attendance-system/internal/core/domain"
	"github.com/silab/attendance-system/internal/core/ports"
)

// ScheduleRepository implements ports.ScheduleRepository. Duty assignments
// live on the user documents (piket_day keyed by _id), which makes the
// at-most-one-day-per-user invariant structural.
type ScheduleRepository struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewScheduleRepository(client *mongo.Client, db *mongo.Database) *ScheduleRepository {
	return &ScheduleRepository{client: client, col: db.Collection(collectionUsers)}
}

func (r *ScheduleRepository) ListAssignments(ctx context.Context) ([]domain.User, error) {
	filter := bson.M{"role": domain.RoleAslab, "is_active": true}
	opts := options.Find().SetSort(bson.D{{Key: "piket_day", Value: 1}, {Key: "name", Value: 1}})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("list assignments: decode: %w", err)
		}
		users = append(users, *doc.toDomain())
	}
	return users, cur.Err()
}

// ApplyBatch applies every update inside one transaction; a failed entry
// aborts the whole batch leaving the table untouched.
func (r *ScheduleRepository) ApplyBatch(ctx context.Context, updates []ports.ScheduleUpdate) error {
	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		for _, u := range updates {
			if err := r.setDay(sc, u.UserID, u.NewPiketDay); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ScheduleRepository) SetDay(ctx context.Context, userID string, day *domain.PiketDay) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	update := dayUpdate(day)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("set piket day: %w", err)
	}
	return doc.toDomain(), nil
}

// Regenerate clears every aslab's assignment and applies the new ones in the
// same transaction, mirroring the reset-then-deal bulk flow.
func (r *ScheduleRepository) Regenerate(ctx context.Context, updates []ports.ScheduleUpdate) error {
	return r.inTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := r.resetAll(sc); err != nil {
			return err
		}
		for _, u := range updates {
			if err := r.setDay(sc, u.UserID, u.NewPiketDay); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ScheduleRepository) ResetAll(ctx context.Context) error {
	return r.resetAll(ctx)
}

func (r *ScheduleRepository) resetAll(ctx context.Context) error {
	filter := bson.M{"role": domain.RoleAslab}
	update := bson.M{"$unset": bson.M{"piket_day": ""}, "$set": bson.M{"updated_at": time.Now().UTC()}}

	if _, err := r.col.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("reset assignments: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) setDay(ctx context.Context, userID string, day *domain.PiketDay) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.col.UpdateByID(ctx, oid, dayUpdate(day))
	if err != nil {
		return fmt.Errorf("set piket day: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *ScheduleRepository) inTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func dayUpdate(day *domain.PiketDay) bson.M {
	set := bson.M{"updated_at": time.Now().UTC()}
	if day == nil {
		return bson.M{"$unset": bson.M{"piket_day": ""}, "$set": set}
	}
	set["piket_day"] = string(*day)
	return bson.M{"$set": set}
}
