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

const collectionAttendances = "attendances"

const clockLayout = "15:04:05"

// AttendanceRepository implements ports.AttendanceRepository on the
// attendances collection: one document per (user_id, date), enforced by a
// unique index.
type AttendanceRepository struct {
	col *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) *AttendanceRepository {
	return &AttendanceRepository{col: db.Collection(collectionAttendances)}
}

type attendanceDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         primitive.ObjectID `bson:"user_id"`
	Date           string             `bson:"date"`
	CheckIn        *time.Time         `bson:"check_in,omitempty"`
	CheckInMethod  string             `bson:"check_in_method,omitempty"`
	CheckOut       *time.Time         `bson:"check_out,omitempty"`
	CheckOutMethod string             `bson:"check_out_method,omitempty"`
	Status         string             `bson:"status"`
}

func (d *attendanceDoc) toDomain() *domain.AttendanceRecord {
	return &domain.AttendanceRecord{
		ID:             d.ID.Hex(),
		UserID:         d.UserID.Hex(),
		Date:           d.Date,
		CheckIn:        d.CheckIn,
		CheckInMethod:  d.CheckInMethod,
		CheckOut:       d.CheckOut,
		CheckOutMethod: d.CheckOutMethod,
		Status:         domain.AttendanceStatus(d.Status),
	}
}

func (r *AttendanceRepository) FindByUserDate(ctx context.Context, userID, date string) (*domain.AttendanceRecord, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrRecordNotFound
	}

	var doc attendanceDoc
	err = r.col.FindOne(ctx, bson.M{"user_id": oid, "date": date}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return doc.toDomain(), nil
}

// CreateCheckIn inserts the first record of the day. The unique
// (user_id, date) index turns a lost race into ErrAlreadyCheckedIn instead
// of a double check-in.
func (r *AttendanceRepository) CreateCheckIn(ctx context.Context, rec *domain.AttendanceRecord) error {
	oid, err := primitive.ObjectIDFromHex(rec.UserID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	doc := attendanceDoc{
		UserID:        oid,
		Date:          rec.Date,
		CheckIn:       rec.CheckIn,
		CheckInMethod: rec.CheckInMethod,
		Status:        string(rec.Status),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyCheckedIn
		}
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// SetCheckOut completes the record. The filter demands an open record
// (check_in set, check_out unset); zero matches means another writer got
// there first.
func (r *AttendanceRepository) SetCheckOut(ctx context.Context, userID, date string, at time.Time, method string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	filter := bson.M{
		"user_id":   oid,
		"date":      date,
		"check_in":  bson.M{"$ne": nil},
		"check_out": nil,
	}
	update := bson.M{"$set": bson.M{
		"check_out":        at,
		"check_out_method": method,
		"status":           string(domain.StatusPresent),
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("set check-out: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAlreadyCheckedOut
	}
	return nil
}

// rowDoc is an attendance document with its user $lookup resolved.
type rowDoc struct {
	attendanceDoc `bson:",inline"`
	User          []userDoc `bson:"user"`
}

func (d *rowDoc) toRow() ports.AttendanceRow {
	row := ports.AttendanceRow{
		Date:   d.Date,
		Status: domain.AttendanceStatus(d.Status),
	}
	if d.CheckIn != nil {
		t := d.CheckIn.Local().Format(clockLayout)
		row.CheckIn = &t
	}
	if d.CheckOut != nil {
		t := d.CheckOut.Local().Format(clockLayout)
		row.CheckOut = &t
	}
	if len(d.User) > 0 {
		u := d.User[0]
		row.User = ports.ScanUser{ID: u.ID.Hex(), Name: u.Name, Prodi: u.Prodi, Semester: u.Semester}
	}
	return row
}

func lookupUserStage() bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":         collectionUsers,
		"localField":   "user_id",
		"foreignField": "_id",
		"as":           "user",
	}}}
}

func (r *AttendanceRepository) ListRange(ctx context.Context, filter ports.ListAttendanceFilter) ([]ports.AttendanceRow, int64, error) {
	match := bson.M{}
	if filter.Date != "" {
		match["date"] = filter.Date
	}

	total, err := r.col.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendance: count: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 15
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}, {Key: "check_in", Value: -1}}}},
		{{Key: "$skip", Value: int64(page-1) * int64(limit)}},
		{{Key: "$limit", Value: int64(limit)}},
		lookupUserStage(),
	}

	rows, err := r.aggregateRows(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}
	return rows, total, nil
}

func (r *AttendanceRepository) ListWithUsers(ctx context.Context, startDate, endDate string) ([]ports.AttendanceRow, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": startDate, "$lte": endDate}}}},
		{{Key: "$sort", Value: bson.D{{Key: "check_in", Value: -1}}}},
		lookupUserStage(),
	}

	rows, err := r.aggregateRows(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list attendance rows: %w", err)
	}
	return rows, nil
}

func (r *AttendanceRepository) aggregateRows(ctx context.Context, pipeline mongo.Pipeline) ([]ports.AttendanceRow, error) {
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	rows := make([]ports.AttendanceRow, 0)
	for cur.Next(ctx) {
		var doc rowDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		rows = append(rows, doc.toRow())
	}
	return rows, cur.Err()
}

func (r *AttendanceRepository) CountByAction(ctx context.Context, action domain.ScanAction, startDate, endDate string) (int64, error) {
	field := "check_in"
	if action == domain.ActionCheckOut {
		field = "check_out"
	}

	filter := bson.M{
		"date": bson.M{"$gte": startDate, "$lte": endDate},
		field:  bson.M{"$ne": nil},
	}

	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", field, err)
	}
	return n, nil
}

func (r *AttendanceRepository) MostActive(ctx context.Context, startDate, endDate string, limit int) ([]ports.ActiveAslab, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"date":     bson.M{"$gte": startDate, "$lte": endDate},
			"check_in": bson.M{"$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$user_id",
			"total": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}}}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("most active: %w", err)
	}
	defer cur.Close(ctx)

	ranking := make([]ports.ActiveAslab, 0, limit)
	for cur.Next(ctx) {
		var doc struct {
			Total int64     `bson:"total"`
			User  []userDoc `bson:"user"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("most active: decode: %w", err)
		}
		if len(doc.User) == 0 || !doc.User[0].IsActive {
			continue
		}
		u := doc.User[0]
		ranking = append(ranking, ports.ActiveAslab{
			Name:            u.Name,
			Prodi:           u.Prodi,
			Semester:        u.Semester,
			TotalAttendance: doc.Total,
		})
	}
	return ranking, cur.Err()
}

func (r *AttendanceRepository) DailyCounts(ctx context.Context, startDate, endDate string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"date":     bson.M{"$gte": startDate, "$lte": endDate},
			"check_in": bson.M{"$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$date",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	defer cur.Close(ctx)

	counts := make(map[string]int64)
	for cur.Next(ctx) {
		var doc struct {
			Date  string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("daily counts: decode: %w", err)
		}
		counts[doc.Date] = doc.Count
	}
	return counts, cur.Err()
}

// EnsureIndexes creates the uniqueness constraint behind the
// one-record-per-user-per-day invariant plus the range-query index.
func (r *AttendanceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
