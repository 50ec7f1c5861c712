package model

import (
	"encoding/json"
	"time"

	"task-manager.com/task-manager/internal/constants"
)

type Task struct {
	ID          string                 `gorm:"primaryKey;size:36" bson:"_id" json:"_id"`
	Title       string                 `gorm:"not null" bson:"title" json:"title"`
	Description string                 `gorm:"not null;default:''" bson:"description" json:"description"`
	Priority    constants.TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" bson:"priority" json:"priority"`
	DueDate     *time.Time             `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Status      constants.TaskStatus   `gorm:"type:varchar(20);not null;default:'pending';index" bson:"status" json:"status"`
	Completed   bool                   `gorm:"not null;default:false" bson:"completed" json:"completed"`
	OwnerID     string                 `gorm:"size:36;not null;index:idx_tasks_owner_created,priority:1" bson:"userId" json:"userId"`
	Version     uint                   `gorm:"not null;default:1" bson:"version" json:"version"`
	CreatedAt   time.Time              `gorm:"index:idx_tasks_owner_created,priority:2,sort:desc" bson:"createdAt" json:"createdAt"`
}

// Consistent reports whether the derived completed flag agrees with status.
func (t *Task) Consistent() bool {
	return t.Completed == (t.Status == constants.StatusDone)
}

// MarshalJSON emits the id under both "_id" and "id"; clients written against
// the document store read "_id".
func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	return json.Marshal(struct {
		plain
		AliasID string `json:"id"`
	}{plain(t), t.ID})
}
