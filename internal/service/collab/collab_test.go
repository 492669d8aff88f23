package collab

import (
	"context"
	"errors"
	"testing"
	"time"

	"opsboard/internal/model"
	"opsboard/internal/repository"

	"go.uber.org/zap"
)

type fakeStore struct {
	users     map[int]model.User
	projects  map[int]model.Project
	tasks     map[int]model.Task
	members   []model.ProjectMember
	invites   map[int]*model.ProjectInvite
	workflows map[int]*model.ApprovalWorkflow
	responses []model.ApprovalResponse
	decisions map[int]*model.TeamDecision
	votes     []model.DecisionVote
	comments  []model.DecisionComment
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[int]model.User{},
		projects:  map[int]model.Project{},
		tasks:     map[int]model.Task{},
		invites:   map[int]*model.ProjectInvite{},
		workflows: map[int]*model.ApprovalWorkflow{},
		decisions: map[int]*model.TeamDecision{},
		nextID:    100,
	}
}

func (f *fakeStore) id() int {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) InsertUser(ctx context.Context, u *model.User) (int, error) {
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return 0, repository.ErrConflict
		}
	}
	u.ID = f.id()
	f.users[u.ID] = *u
	return u.ID, nil
}

func (f *fakeStore) GetUser(ctx context.Context, id int) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) GetProject(ctx context.Context, id int) (*model.Project, error) {
	if p, ok := f.projects[id]; ok {
		return &p, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) ListProjectIDsForUser(ctx context.Context, userID int) ([]int, error) {
	ids := []int{}
	for _, m := range f.members {
		if m.UserID == userID {
			ids = append(ids, m.ProjectID)
		}
	}
	return ids, nil
}

func (f *fakeStore) GetTask(ctx context.Context, id int) (*model.Task, error) {
	if t, ok := f.tasks[id]; ok {
		return &t, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) AssignTask(ctx context.Context, t *model.Task) error {
	f.tasks[t.ID] = *t
	return nil
}

func (f *fakeStore) ListTasksByAssignee(ctx context.Context, userID int) ([]model.Task, error) {
	out := []model.Task{}
	for _, t := range f.tasks {
		if t.AssigneeID != nil && *t.AssigneeID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertMember(ctx context.Context, m *model.ProjectMember) (int, error) {
	m.ID = f.id()
	f.members = append(f.members, *m)
	return m.ID, nil
}

func (f *fakeStore) GetMember(ctx context.Context, projectID, userID int) (*model.ProjectMember, error) {
	for i := range f.members {
		if f.members[i].ProjectID == projectID && f.members[i].UserID == userID {
			return &f.members[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) ListMembers(ctx context.Context, projectID int) ([]model.ProjectMember, error) {
	out := []model.ProjectMember{}
	for _, m := range f.members {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateMemberPermissions(ctx context.Context, projectID, userID int, role model.UserRole, perms model.SharePermission) error {
	for i := range f.members {
		if f.members[i].ProjectID == projectID && f.members[i].UserID == userID {
			f.members[i].Role = role
			f.members[i].Permissions = perms
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeStore) RemoveMember(ctx context.Context, projectID, userID int) error {
	for i := range f.members {
		if f.members[i].ProjectID == projectID && f.members[i].UserID == userID {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeStore) InsertInvite(ctx context.Context, i *model.ProjectInvite) (int, error) {
	i.ID = f.id()
	f.invites[i.ID] = i
	return i.ID, nil
}

func (f *fakeStore) GetInviteByToken(ctx context.Context, token string) (*model.ProjectInvite, error) {
	for _, i := range f.invites {
		if i.InviteToken == token {
			return i, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) ListInvitesForUser(ctx context.Context, userID int) ([]model.ProjectInvite, error) {
	out := []model.ProjectInvite{}
	for _, i := range f.invites {
		if i.InvitedUserID != nil && *i.InvitedUserID == userID && i.Status == model.InvitePending {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateInviteStatus(ctx context.Context, id int, status model.InviteStatus) error {
	i, ok := f.invites[id]
	if !ok {
		return repository.ErrNotFound
	}
	i.Status = status
	return nil
}

func (f *fakeStore) InsertWorkflow(ctx context.Context, w *model.ApprovalWorkflow) (int, error) {
	w.ID = f.id()
	f.workflows[w.ID] = w
	return w.ID, nil
}

func (f *fakeStore) GetWorkflow(ctx context.Context, id int) (*model.ApprovalWorkflow, error) {
	if w, ok := f.workflows[id]; ok {
		dup := *w
		return &dup, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) ListWorkflows(ctx context.Context, projectID int) ([]model.ApprovalWorkflow, error) {
	out := []model.ApprovalWorkflow{}
	for _, w := range f.workflows {
		if w.ProjectID == projectID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateWorkflowStatus(ctx context.Context, id int, status model.ApprovalStatus) error {
	w, ok := f.workflows[id]
	if !ok {
		return repository.ErrNotFound
	}
	w.Status = status
	return nil
}

func (f *fakeStore) InsertResponse(ctx context.Context, resp *model.ApprovalResponse) (int, error) {
	resp.ID = f.id()
	f.responses = append(f.responses, *resp)
	return resp.ID, nil
}

func (f *fakeStore) ListResponses(ctx context.Context, workflowID int) ([]model.ApprovalResponse, error) {
	out := []model.ApprovalResponse{}
	for _, r := range f.responses {
		if r.WorkflowID == workflowID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertTeamDecision(ctx context.Context, d *model.TeamDecision) (int, error) {
	d.ID = f.id()
	f.decisions[d.ID] = d
	return d.ID, nil
}

func (f *fakeStore) GetTeamDecision(ctx context.Context, id int) (*model.TeamDecision, error) {
	if d, ok := f.decisions[id]; ok {
		dup := *d
		return &dup, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) ListTeamDecisions(ctx context.Context, projectID int) ([]model.TeamDecision, error) {
	out := []model.TeamDecision{}
	for _, d := range f.decisions {
		if d.ProjectID == projectID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeStore) ConcludeTeamDecision(ctx context.Context, id int, finalDecision, rationale string) error {
	d, ok := f.decisions[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.IsConcluded = true
	d.FinalDecision = finalDecision
	d.DecisionRationale = rationale
	return nil
}

func (f *fakeStore) GetVote(ctx context.Context, decisionID, voterID int) (*model.DecisionVote, error) {
	for i := range f.votes {
		if f.votes[i].DecisionID == decisionID && f.votes[i].VoterID == voterID {
			return &f.votes[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) InsertVote(ctx context.Context, v *model.DecisionVote) (int, error) {
	v.ID = f.id()
	f.votes = append(f.votes, *v)
	return v.ID, nil
}

func (f *fakeStore) UpdateVote(ctx context.Context, v *model.DecisionVote) error {
	for i := range f.votes {
		if f.votes[i].ID == v.ID {
			f.votes[i] = *v
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeStore) ListVotes(ctx context.Context, decisionID int) ([]model.DecisionVote, error) {
	out := []model.DecisionVote{}
	for _, v := range f.votes {
		if v.DecisionID == decisionID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertComment(ctx context.Context, c *model.DecisionComment) (int, error) {
	c.ID = f.id()
	f.comments = append(f.comments, *c)
	return c.ID, nil
}

func (f *fakeStore) ListComments(ctx context.Context, decisionID int) ([]model.DecisionComment, error) {
	out := []model.DecisionComment{}
	for _, c := range f.comments {
		if c.DecisionID == decisionID {
			out = append(out, c)
		}
	}
	return out, nil
}

// testWorld wires a project with an owner (user 1), a writer (user 2), a
// reader (user 3) and an outsider (user 4).
func testWorld() (*fakeStore, *Service) {
	f := newFakeStore()
	f.users[1] = model.User{ID: 1, Username: "owner", IsActive: true}
	f.users[2] = model.User{ID: 2, Username: "writer", IsActive: true}
	f.users[3] = model.User{ID: 3, Username: "reader", IsActive: true}
	f.users[4] = model.User{ID: 4, Username: "outsider", IsActive: true}
	f.projects[1] = model.Project{ID: 1, Name: "Shared", OwnerID: 1}
	f.members = []model.ProjectMember{
		{ID: 1, ProjectID: 1, UserID: 2, Role: model.RoleMember, Permissions: model.PermissionWrite},
		{ID: 2, ProjectID: 1, UserID: 3, Role: model.RoleViewer, Permissions: model.PermissionRead},
	}
	svc := NewService(f, "test-secret", zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC) }
	return f, svc
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFakeStore()
	svc := NewService(f, "test-secret", zap.NewNop())

	u, err := svc.Register(context.Background(), "alice", "alice@example.com", "Alice", "s3cret-pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.ID == 0 || u.PasswordHash == "s3cret-pw" {
		t.Fatalf("password stored in the clear: %+v", u)
	}

	token, logged, err := svc.Login(context.Background(), "alice", "s3cret-pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" || logged.ID != u.ID {
		t.Fatalf("unexpected login result: token=%q user=%+v", token, logged)
	}

	if _, _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password should fail with ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody", "s3cret-pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user should fail with ErrInvalidCredentials, got %v", err)
	}
}

func TestHasPermission(t *testing.T) {
	_, svc := testWorld()
	ctx := context.Background()

	tests := []struct {
		userID   int
		required model.SharePermission
		want     bool
	}{
		{1, model.PermissionAdmin, true}, // owner holds everything
		{2, model.PermissionWrite, true},
		{2, model.PermissionAdmin, false},
		{3, model.PermissionRead, true},
		{3, model.PermissionWrite, false},
		{4, model.PermissionRead, false},
	}
	for _, tt := range tests {
		got, err := svc.HasPermission(ctx, tt.userID, 1, tt.required)
		if err != nil {
			t.Fatalf("HasPermission(%d, %s) failed: %v", tt.userID, tt.required, err)
		}
		if got != tt.want {
			t.Errorf("HasPermission(%d, %s) = %v, want %v", tt.userID, tt.required, got, tt.want)
		}
	}
}

func TestShareProjectRequiresAdmin(t *testing.T) {
	_, svc := testWorld()
	ctx := context.Background()
	invited := 4

	if _, err := svc.ShareProject(ctx, 1, 2, &invited, "", model.RoleMember, model.PermissionWrite); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("writer must not share, got %v", err)
	}

	invite, err := svc.ShareProject(ctx, 1, 1, &invited, "", model.RoleMember, model.PermissionWrite)
	if err != nil {
		t.Fatalf("owner share failed: %v", err)
	}
	if invite.Status != model.InvitePending || invite.InviteToken == "" {
		t.Fatalf("unexpected invite: %+v", invite)
	}
}

func TestAcceptInvite(t *testing.T) {
	f, svc := testWorld()
	ctx := context.Background()
	invited := 4

	invite, err := svc.ShareProject(ctx, 1, 1, &invited, "", model.RoleMember, model.PermissionWrite)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}

	member, err := svc.AcceptInvite(ctx, invite.InviteToken, 4)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if member.ProjectID != 1 || member.UserID != 4 || member.Permissions != model.PermissionWrite {
		t.Fatalf("unexpected membership: %+v", member)
	}
	if f.invites[invite.ID].Status != model.InviteAccepted {
		t.Fatalf("invite not marked accepted: %s", f.invites[invite.ID].Status)
	}

	if _, err := svc.AcceptInvite(ctx, invite.InviteToken, 4); !errors.Is(err, ErrInviteResolved) {
		t.Fatalf("second accept should fail with ErrInviteResolved, got %v", err)
	}

	ok, err := svc.HasPermission(ctx, 4, 1, model.PermissionWrite)
	if err != nil || !ok {
		t.Fatalf("accepted member should hold WRITE, got ok=%v err=%v", ok, err)
	}
}

func TestAcceptExpiredInvite(t *testing.T) {
	f, svc := testWorld()
	ctx := context.Background()
	invited := 4

	invite, err := svc.ShareProject(ctx, 1, 1, &invited, "", model.RoleViewer, model.PermissionRead)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	svc.now = func() time.Time { return invite.ExpiresAt.Add(time.Hour) }

	if _, err := svc.AcceptInvite(ctx, invite.InviteToken, 4); !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("expired invite should fail with ErrInviteExpired, got %v", err)
	}
	if f.invites[invite.ID].Status != model.InviteExpired {
		t.Fatalf("invite not marked expired: %s", f.invites[invite.ID].Status)
	}
}

func TestRejectInvite(t *testing.T) {
	f, svc := testWorld()
	ctx := context.Background()
	invited := 4

	invite, err := svc.ShareProject(ctx, 1, 1, &invited, "", model.RoleViewer, model.PermissionRead)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if err := svc.RejectInvite(ctx, invite.InviteToken); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if f.invites[invite.ID].Status != model.InviteRejected {
		t.Fatalf("invite not marked rejected: %s", f.invites[invite.ID].Status)
	}
	if err := svc.RejectInvite(ctx, invite.InviteToken); !errors.Is(err, ErrInviteResolved) {
		t.Fatalf("second reject should fail with ErrInviteResolved, got %v", err)
	}
}

func TestAssignTask(t *testing.T) {
	f, svc := testWorld()
	ctx := context.Background()
	f.tasks[10] = model.Task{ID: 10, ProjectID: 1, Title: "Build it", State: model.StateBacklog}

	task, err := svc.AssignTask(ctx, 10, 3, 2)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if task.AssigneeID == nil || *task.AssigneeID != 3 {
		t.Fatalf("assignee not set: %+v", task)
	}

	if _, err := svc.AssignTask(ctx, 10, 3, 3); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("reader must not assign, got %v", err)
	}
	if _, err := svc.AssignTask(ctx, 10, 4, 2); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("assigning to an outsider must fail, got %v", err)
	}
}

func TestUserWorkload(t *testing.T) {
	f, svc := testWorld()
	ctx := context.Background()
	assignee := 2
	past := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	f.tasks[10] = model.Task{ID: 10, ProjectID: 1, State: model.StateInProgress, AssigneeID: &assignee, Priority: 1, DueDate: &past}
	f.tasks[11] = model.Task{ID: 11, ProjectID: 1, State: model.StateBacklog, AssigneeID: &assignee, Priority: 4}
	f.tasks[12] = model.Task{ID: 12, ProjectID: 2, State: model.StateDone, AssigneeID: &assignee, Priority: 3}

	w, err := svc.UserWorkload(ctx, 2, nil)
	if err != nil {
		t.Fatalf("workload failed: %v", err)
	}
	if w.TotalTasks != 3 || w.OverdueTasks != 1 || w.HighPriorityTasks != 1 {
		t.Fatalf("unexpected workload: %+v", w)
	}

	projectID := 1
	scoped, err := svc.UserWorkload(ctx, 2, &projectID)
	if err != nil {
		t.Fatalf("scoped workload failed: %v", err)
	}
	if scoped.TotalTasks != 2 || scoped.ByState[string(model.StateInProgress)] != 1 {
		t.Fatalf("unexpected scoped workload: %+v", scoped)
	}
}

func TestApprovalWorkflow(t *testing.T) {
	_, svc := testWorld()
	ctx := context.Background()

	w, err := svc.CreateWorkflow(ctx, &model.ApprovalWorkflow{
		ProjectID:         1,
		Title:             "Release sign-off",
		RequestedByID:     2,
		RequiredApprovers: 5,
		ApproverUserIDs:   []int{1, 3},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if w.RequiredApprovers != 2 {
		t.Fatalf("required approvers not capped at approver count: %d", w.RequiredApprovers)
	}
	if w.Status != model.ApprovalPending {
		t.Fatalf("new workflow not pending: %s", w.Status)
	}

	if _, err := svc.RespondToWorkflow(ctx, w.ID, 4, true, ""); !errors.Is(err, ErrNotApprover) {
		t.Fatalf("non-approver response should fail, got %v", err)
	}

	after, err := svc.RespondToWorkflow(ctx, w.ID, 1, true, "lgtm")
	if err != nil {
		t.Fatalf("first response failed: %v", err)
	}
	if after.Status != model.ApprovalPending {
		t.Fatalf("one of two approvals should not resolve: %s", after.Status)
	}

	after, err = svc.RespondToWorkflow(ctx, w.ID, 3, true, "")
	if err != nil {
		t.Fatalf("second response failed: %v", err)
	}
	if after.Status != model.ApprovalApproved {
		t.Fatalf("threshold met but not approved: %s", after.Status)
	}

	if _, err := svc.RespondToWorkflow(ctx, w.ID, 1, false, ""); !errors.Is(err, ErrWorkflowResolved) {
		t.Fatalf("responding to a resolved workflow should fail, got %v", err)
	}
}

func TestApprovalRejection(t *testing.T) {
	_, svc := testWorld()
	ctx := context.Background()

	w, err := svc.CreateWorkflow(ctx, &model.ApprovalWorkflow{
		ProjectID:         1,
		Title:             "Risky change",
		RequestedByID:     1,
		RequiredApprovers: 2,
		ApproverUserIDs:   []int{2, 3},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	after, err := svc.RespondToWorkflow(ctx, w.ID, 2, false, "needs work")
	if err != nil {
		t.Fatalf("response failed: %v", err)
	}
	if after.Status != model.ApprovalRejected {
		t.Fatalf("single rejection should reject: %s", after.Status)
	}
}

func TestVoting(t *testing.T) {
	_, svc := testWorld()
	ctx := context.Background()

	d, err := svc.CreateTeamDecision(ctx, &model.TeamDecision{
		ProjectID:       1,
		Title:           "Pick the stack",
		Options:         []string{"go", "rust"},
		IsVotingEnabled: true,
		CreatedByID:     2,
	})
	if err != nil {
		t.Fatalf("create decision failed: %v", err)
	}

	if _, err := svc.CastVote(ctx, d.ID, 4, []string{"go"}, ""); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("outsider vote should fail, got %v", err)
	}

	if _, err := svc.CastVote(ctx, d.ID, 2, []string{"go"}, "familiar"); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := svc.CastVote(ctx, d.ID, 3, []string{"rust"}, ""); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	// A repeat vote replaces the previous one instead of stacking.
	if _, err := svc.CastVote(ctx, d.ID, 3, []string{"go"}, "changed my mind"); err != nil {
		t.Fatalf("revote failed: %v", err)
	}

	stats, err := svc.Stats(ctx, d.ID)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalVotes != 2 || stats.OptionCounts["go"] != 2 || stats.OptionCounts["rust"] != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.ParticipationRate != 1.0 {
		t.Fatalf("both members voted, rate should be 1.0: %v", stats.ParticipationRate)
	}
}

func TestVotingClosedAfterDeadline(t *testing.T) {
	_, svc := testWorld()
	ctx := context.Background()
	deadline := svc.now().Add(-time.Hour)

	d, err := svc.CreateTeamDecision(ctx, &model.TeamDecision{
		ProjectID:       1,
		Title:           "Too late",
		IsVotingEnabled: true,
		VotingDeadline:  &deadline,
		CreatedByID:     1,
	})
	if err != nil {
		t.Fatalf("create decision failed: %v", err)
	}
	if _, err := svc.CastVote(ctx, d.ID, 2, []string{"yes"}, ""); !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("vote after deadline should fail, got %v", err)
	}
}

func TestConcludeDecision(t *testing.T) {
	_, svc := testWorld()
	ctx := context.Background()

	d, err := svc.CreateTeamDecision(ctx, &model.TeamDecision{
		ProjectID:       1,
		Title:           "Ship date",
		IsVotingEnabled: true,
		CreatedByID:     2,
	})
	if err != nil {
		t.Fatalf("create decision failed: %v", err)
	}

	if _, err := svc.ConcludeDecision(ctx, d.ID, 3, "friday", ""); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("reader must not conclude, got %v", err)
	}

	concluded, err := svc.ConcludeDecision(ctx, d.ID, 2, "friday", "team agreed")
	if err != nil {
		t.Fatalf("creator conclude failed: %v", err)
	}
	if !concluded.IsConcluded || concluded.FinalDecision != "friday" {
		t.Fatalf("decision not concluded: %+v", concluded)
	}

	if _, err := svc.CastVote(ctx, d.ID, 2, []string{"yes"}, ""); !errors.Is(err, ErrVotingClosed) {
		t.Fatalf("vote after conclusion should fail, got %v", err)
	}
}

func TestComments(t *testing.T) {
	_, svc := testWorld()
	ctx := context.Background()

	d, err := svc.CreateTeamDecision(ctx, &model.TeamDecision{
		ProjectID:   1,
		Title:       "Naming",
		CreatedByID: 1,
	})
	if err != nil {
		t.Fatalf("create decision failed: %v", err)
	}

	root, err := svc.AddComment(ctx, d.ID, 3, "I vote for boring names", nil)
	if err != nil {
		t.Fatalf("comment failed: %v", err)
	}
	if _, err := svc.AddComment(ctx, d.ID, 2, "agreed", &root.ID); err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if _, err := svc.AddComment(ctx, d.ID, 4, "lurking", nil); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("outsider comment should fail, got %v", err)
	}

	comments, err := svc.Comments(ctx, d.ID, 3)
	if err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("want 2 comments, got %d", len(comments))
	}
}
