package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"task-manager.com/task-manager/internal/constants"
	model "task-manager.com/task-manager/internal/models"
)

const (
	TasksCollection = "tasks"
	UsersCollection = "users"
)

var newestFirstSort = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// MongoTaskRepository is the TaskStore for a MongoDB deployment. Single-task
// writes use FindOneAndUpdate / FindOneAndDelete so they are atomic per
// document.
type MongoTaskRepository struct {
	tasks *mongo.Collection
}

var _ TaskStore = (*MongoTaskRepository)(nil)

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{tasks: db.Collection(TasksCollection)}
}

// EnsureIndexes creates the owner/createdAt index used by every listing.
func (r *MongoTaskRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func ownedFilter(ownerID, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "userId", Value: ownerID}}
}

func (r *MongoTaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := validateTask(task); err != nil {
		return err
	}
	if _, err := r.tasks.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *MongoTaskRepository) FindOwned(ctx context.Context, ownerID, id string) (*model.Task, error) {
	var task model.Task
	err := r.tasks.FindOne(ctx, ownedFilter(ownerID, id)).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

func listFilter(ownerID string, filter TaskFilter) bson.D {
	query := bson.D{{Key: "userId", Value: ownerID}}

	if filter.Status != "" {
		query = append(query, bson.E{Key: "status", Value: filter.Status})
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(q)},
			{Key: "$options", Value: "i"},
		}
		query = append(query, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: pattern}},
			bson.D{{Key: "description", Value: pattern}},
		}})
	}
	if filter.DueFrom != nil || filter.DueBefore != nil {
		due := bson.D{}
		if filter.DueFrom != nil {
			due = append(due, bson.E{Key: "$gte", Value: filter.DueFrom.UTC()})
		}
		if filter.DueBefore != nil {
			due = append(due, bson.E{Key: "$lt", Value: filter.DueBefore.UTC()})
		}
		query = append(query, bson.E{Key: "dueDate", Value: due})
	}

	return query
}

func (r *MongoTaskRepository) ListOwned(ctx context.Context, ownerID string, filter TaskFilter) ([]model.Task, error) {
	opts := options.Find().SetSort(newestFirstSort)
	return r.find(ctx, listFilter(ownerID, filter), opts)
}

func (r *MongoTaskRepository) PageOwned(ctx context.Context, ownerID string, offset, limit int) ([]model.Task, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	opts := options.Find().
		SetSort(newestFirstSort).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	return r.find(ctx, bson.D{{Key: "userId", Value: ownerID}}, opts)
}

func (r *MongoTaskRepository) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]model.Task, error) {
	cursor, err := r.tasks.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]model.Task, 0)
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

func (r *MongoTaskRepository) CountOwned(ctx context.Context, ownerID string) (int64, error) {
	n, err := r.tasks.CountDocuments(ctx, bson.D{{Key: "userId", Value: ownerID}})
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func statusCountPipeline(ownerID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userId", Value: ownerID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

func (r *MongoTaskRepository) CountByStatus(ctx context.Context, ownerID string) (map[constants.TaskStatus]int64, error) {
	cursor, err := r.tasks.Aggregate(ctx, statusCountPipeline(ownerID))
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode status counts: %w", err)
	}

	counts := make(map[constants.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[constants.TaskStatus(row.Status)] += row.Count
	}
	return counts, nil
}

// updatePipeline renders changes as an aggregation-pipeline update so that
// the completion rule can read the document's current status/completed.
// Caller-supplied strings are wrapped in $literal so a title such as
// "$status" is never evaluated as a field path.
func updatePipeline(changes model.TaskChanges) mongo.Pipeline {
	set := bson.D{
		{Key: "version", Value: bson.D{{Key: "$add", Value: bson.A{"$version", 1}}}},
	}
	literal := func(v interface{}) bson.D {
		return bson.D{{Key: "$literal", Value: v}}
	}

	if changes.Title != nil {
		set = append(set, bson.E{Key: "title", Value: literal(*changes.Title)})
	}
	if changes.Description != nil {
		set = append(set, bson.E{Key: "description", Value: literal(*changes.Description)})
	}
	if changes.Priority != nil {
		set = append(set, bson.E{Key: "priority", Value: literal(string(*changes.Priority))})
	}
	if !changes.ClearDueDate && changes.DueDate != nil {
		set = append(set, bson.E{Key: "dueDate", Value: changes.DueDate.UTC()})
	}

	done := string(constants.StatusDone)
	pending := string(constants.StatusPending)

	switch c := changes.Completion; c.Rule {
	case model.CompletionSet:
		set = append(set,
			bson.E{Key: "status", Value: literal(string(c.Status))},
			bson.E{Key: "completed", Value: c.Status == constants.StatusDone},
		)
	case model.CompletionReopen:
		set = append(set,
			bson.E{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$status", done}}}, pending, "$status",
			}}}},
			bson.E{Key: "completed", Value: false},
		)
	case model.CompletionToggle:
		// Expressions in one $set stage all see the pre-update document.
		set = append(set,
			bson.E{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$completed", true}}}, pending, done,
			}}}},
			bson.E{Key: "completed", Value: bson.D{{Key: "$ne", Value: bson.A{"$completed", true}}}},
		)
	}

	pipeline := mongo.Pipeline{{{Key: "$set", Value: set}}}
	if changes.ClearDueDate {
		pipeline = append(pipeline, bson.D{{Key: "$unset", Value: "dueDate"}})
	}
	return pipeline
}

func (r *MongoTaskRepository) UpdateOwned(ctx context.Context, ownerID, id string, changes model.TaskChanges) (*model.Task, error) {
	if err := validateChanges(changes); err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task model.Task
	err := r.tasks.FindOneAndUpdate(ctx, ownedFilter(ownerID, id), updatePipeline(changes), opts).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &task, nil
}

func (r *MongoTaskRepository) DeleteOwned(ctx context.Context, ownerID, id string) error {
	err := r.tasks.FindOneAndDelete(ctx, ownedFilter(ownerID, id)).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// normalizeSteps lists the filter/update pairs NormalizeLegacy runs in order.
func normalizeSteps() []struct {
	filter bson.D
	update interface{}
} {
	type step = struct {
		filter bson.D
		update interface{}
	}

	lowerTrim := func(field string) bson.D {
		return bson.D{{Key: "$toLower", Value: bson.D{{Key: "$trim", Value: bson.D{
			{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, ""}}}},
		}}}}}
	}

	var steps []step

	legacy := constants.LegacyStatusSpellings()
	for _, canonical := range constants.TaskStatuses {
		spellings := bson.A{string(canonical)}
		for _, s := range legacy[canonical] {
			spellings = append(spellings, s)
		}
		steps = append(steps, step{
			filter: bson.D{{Key: "$expr", Value: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "$ne", Value: bson.A{"$status", string(canonical)}}},
				bson.D{{Key: "$in", Value: bson.A{lowerTrim("status"), spellings}}},
			}}}}},
			update: bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: string(canonical)}}}},
		})
	}

	statuses := bson.A{}
	for _, s := range constants.TaskStatuses {
		statuses = append(statuses, string(s))
	}
	steps = append(steps,
		step{
			filter: bson.D{{Key: "status", Value: bson.D{{Key: "$nin", Value: statuses}}}},
			update: mongo.Pipeline{{{Key: "$set", Value: bson.D{{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$completed", true}}},
				string(constants.StatusDone),
				string(constants.StatusPending),
			}}}}}}}},
		},
		step{
			filter: bson.D{{Key: "completed", Value: bson.D{{Key: "$exists", Value: false}}}},
			update: bson.D{{Key: "$set", Value: bson.D{{Key: "completed", Value: false}}}},
		},
		step{
			filter: bson.D{
				{Key: "completed", Value: true},
				{Key: "status", Value: bson.D{{Key: "$ne", Value: string(constants.StatusDone)}}},
			},
			update: bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: string(constants.StatusDone)}}}},
		},
		step{
			filter: bson.D{
				{Key: "completed", Value: false},
				{Key: "status", Value: string(constants.StatusDone)},
			},
			update: bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: string(constants.StatusPending)}}}},
		},
	)

	priorities := bson.A{
		string(constants.PriorityLow),
		string(constants.PriorityMedium),
		string(constants.PriorityHigh),
	}
	steps = append(steps, step{
		filter: bson.D{{Key: "priority", Value: bson.D{{Key: "$nin", Value: priorities}}}},
		update: mongo.Pipeline{{{Key: "$set", Value: bson.D{{Key: "priority", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$in", Value: bson.A{lowerTrim("priority"), priorities}}},
			lowerTrim("priority"),
			string(constants.DefaultPriority),
		}}}}}}}},
	})

	return steps
}

func (r *MongoTaskRepository) NormalizeLegacy(ctx context.Context) (int64, error) {
	var changed int64
	for _, s := range normalizeSteps() {
		res, err := r.tasks.UpdateMany(ctx, s.filter, s.update)
		if err != nil {
			return changed, fmt.Errorf("normalize tasks: %w", err)
		}
		changed += res.ModifiedCount
	}
	return changed, nil
}
