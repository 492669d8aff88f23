package repository

import (
	"context"
	"opsboard/internal/model"
)

// CollabStore presents the repositories under the method names the collab
// service expects. Membership, invite, workflow and decision methods come
// straight from the embedded CollabRepository.
type CollabStore struct {
	*CollabRepository
	Users    *UserRepository
	Projects *ProjectRepository
	Tasks    *TaskRepository
}

func (s *CollabStore) InsertUser(ctx context.Context, u *model.User) (int, error) {
	return s.Users.Insert(ctx, u)
}

func (s *CollabStore) GetUser(ctx context.Context, id int) (*model.User, error) {
	return s.Users.GetByID(ctx, id)
}

func (s *CollabStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.Users.GetByUsername(ctx, username)
}

func (s *CollabStore) GetProject(ctx context.Context, id int) (*model.Project, error) {
	return s.Projects.GetByID(ctx, id)
}

func (s *CollabStore) GetTask(ctx context.Context, id int) (*model.Task, error) {
	return s.Tasks.GetByID(ctx, id)
}

func (s *CollabStore) AssignTask(ctx context.Context, t *model.Task) error {
	return s.Tasks.Update(ctx, t)
}

func (s *CollabStore) ListTasksByAssignee(ctx context.Context, userID int) ([]model.Task, error) {
	return s.Tasks.ListByAssignee(ctx, userID)
}
