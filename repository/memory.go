package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"photogram/models"
)

// In-memory implementations of the repositories. They honor the same
// contracts as the Mongo ones (ordering, idempotent like semantics,
// duplicate detection) and back the handler tests.

type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		out := u
		return &out, nil
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByLogin(_ context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == login || u.Username == login {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindPreviews(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserPreview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	previews := make(map[primitive.ObjectID]models.UserPreview, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			previews[id] = u.Preview()
		}
	}
	return previews, nil
}

func (r *MemoryUserRepository) Search(_ context.Context, text string, limit int64) ([]models.UserPreview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := []models.UserPreview{}
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(text)) {
			results = append(results, u.Preview())
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Username < results[j].Username })
	if int64(len(results)) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (r *MemoryUserRepository) IsFree(_ context.Context, email, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if email != "" && u.Email == email {
			return false, nil
		}
		if username != "" && u.Username == username {
			return false, nil
		}
	}
	return true, nil
}

func (r *MemoryUserRepository) SetAvatar(_ context.Context, id primitive.ObjectID, dest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.AvatarDest = dest
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type MemoryPostRepository struct {
	mu    sync.Mutex
	posts []models.Post
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{}
}

func (r *MemoryPostRepository) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Likes == nil {
		post.Likes = []models.LikeEntry{}
	}
	if post.Saves == nil {
		post.Saves = []models.LikeEntry{}
	}
	r.posts = append(r.posts, *post)
	return nil
}

func (r *MemoryPostRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID == id {
			out := clonePost(p)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryPostRepository) FindByUser(_ context.Context, userID primitive.ObjectID, lastID *primitive.ObjectID, limit int64, reelsOnly bool) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []models.Post{}
	for _, p := range r.posts {
		if p.UserID != userID {
			continue
		}
		if reelsOnly && !p.IsReel() {
			continue
		}
		if lastID != nil && p.ID.Hex() >= lastID.Hex() {
			continue
		}
		matched = append(matched, clonePost(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID.Hex() > matched[j].ID.Hex() })
	if int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *MemoryPostRepository) FindSaved(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []models.Post{}
	for _, p := range r.posts {
		if p.SavedBy(userID) {
			matched = append(matched, clonePost(p))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID.Hex() > matched[j].ID.Hex() })
	total := int64(len(matched))
	matched = slicePage(matched, skip, limit)
	return matched, total, nil
}

func (r *MemoryPostRepository) Update(_ context.Context, id primitive.ObjectID, update PostUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.posts {
		if r.posts[i].ID != id {
			continue
		}
		if update.Text != nil {
			r.posts[i].Text = *update.Text
		}
		if update.HideComments != nil {
			r.posts[i].HideComments = *update.HideComments
		}
		if update.HideLikes != nil {
			r.posts[i].HideLikes = *update.HideLikes
		}
		return nil
	}
	return ErrNotFound
}

func (r *MemoryPostRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.posts {
		if r.posts[i].ID == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryPostRepository) DeleteByUser(_ context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := []models.Post{}
	kept := r.posts[:0]
	for _, p := range r.posts {
		if p.UserID == userID {
			removed = append(removed, clonePost(p))
		} else {
			kept = append(kept, p)
		}
	}
	r.posts = kept
	return removed, nil
}

func (r *MemoryPostRepository) AddLike(_ context.Context, id, userID primitive.ObjectID) error {
	return r.addMark(id, userID, true)
}

func (r *MemoryPostRepository) RemoveLike(_ context.Context, id, userID primitive.ObjectID) error {
	return r.removeMark(id, userID, true)
}

func (r *MemoryPostRepository) AddSave(_ context.Context, id, userID primitive.ObjectID) error {
	return r.addMark(id, userID, false)
}

func (r *MemoryPostRepository) RemoveSave(_ context.Context, id, userID primitive.ObjectID) error {
	return r.removeMark(id, userID, false)
}

func (r *MemoryPostRepository) addMark(id, userID primitive.ObjectID, like bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.posts {
		if r.posts[i].ID != id {
			continue
		}
		entries := &r.posts[i].Saves
		if like {
			entries = &r.posts[i].Likes
		}
		for _, e := range *entries {
			if e.User == userID {
				return nil
			}
		}
		*entries = append(*entries, models.LikeEntry{User: userID, Date: time.Now().Unix()})
		return nil
	}
	return ErrNotFound
}

func (r *MemoryPostRepository) removeMark(id, userID primitive.ObjectID, like bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.posts {
		if r.posts[i].ID != id {
			continue
		}
		entries := &r.posts[i].Saves
		if like {
			entries = &r.posts[i].Likes
		}
		*entries = pullEntry(*entries, userID)
		return nil
	}
	return ErrNotFound
}

func (r *MemoryPostRepository) RemoveUserMarks(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.posts {
		r.posts[i].Likes = pullEntry(r.posts[i].Likes, userID)
		r.posts[i].Saves = pullEntry(r.posts[i].Saves, userID)
	}
	return nil
}

type MemoryCommentRepository struct {
	mu       sync.Mutex
	comments []models.Comment
}

func NewMemoryCommentRepository() *MemoryCommentRepository {
	return &MemoryCommentRepository{}
}

func (r *MemoryCommentRepository) Create(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.Likes == nil {
		comment.Likes = []models.LikeEntry{}
	}
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *MemoryCommentRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comments {
		if c.ID == id {
			out := cloneComment(c)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryCommentRepository) FindTopLevel(_ context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []models.Comment{}
	for _, c := range r.comments {
		if c.PostID == postID && c.IsTopLevel() {
			matched = append(matched, cloneComment(c))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID.Hex() > matched[j].ID.Hex() })
	return slicePage(matched, skip, limit), nil
}

func (r *MemoryCommentRepository) CountTopLevel(_ context.Context, postID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.comments {
		if c.PostID == postID && c.IsTopLevel() {
			n++
		}
	}
	return n, nil
}

func (r *MemoryCommentRepository) FindReplies(_ context.Context, parentID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []models.Comment{}
	for _, c := range r.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			matched = append(matched, cloneComment(c))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID.Hex() < matched[j].ID.Hex() })
	return slicePage(matched, skip, limit), nil
}

func (r *MemoryCommentRepository) CountReplies(_ context.Context, parentID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryCommentRepository) ReplyCounts(_ context.Context, parentIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[primitive.ObjectID]bool, len(parentIDs))
	for _, id := range parentIDs {
		wanted[id] = true
	}
	counts := make(map[primitive.ObjectID]int64, len(parentIDs))
	for _, c := range r.comments {
		if c.ParentID != nil && wanted[*c.ParentID] {
			counts[*c.ParentID]++
		}
	}
	return counts, nil
}

func (r *MemoryCommentRepository) CountByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryCommentRepository) AddLike(_ context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.comments {
		if r.comments[i].ID != id {
			continue
		}
		for _, e := range r.comments[i].Likes {
			if e.User == userID {
				return nil
			}
		}
		r.comments[i].Likes = append(r.comments[i].Likes, models.LikeEntry{User: userID, Date: time.Now().Unix()})
		return nil
	}
	return ErrNotFound
}

func (r *MemoryCommentRepository) RemoveLike(_ context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.comments {
		if r.comments[i].ID == id {
			r.comments[i].Likes = pullEntry(r.comments[i].Likes, userID)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryCommentRepository) DeleteWithReplies(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.comments[:0]
	for _, c := range r.comments {
		if c.ID == id || (c.ParentID != nil && *c.ParentID == id) {
			continue
		}
		kept = append(kept, c)
	}
	r.comments = kept
	return nil
}

func (r *MemoryCommentRepository) DeleteByPost(_ context.Context, postID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.comments[:0]
	for _, c := range r.comments {
		if c.PostID != postID {
			kept = append(kept, c)
		}
	}
	r.comments = kept
	return nil
}

func (r *MemoryCommentRepository) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	owned := make(map[primitive.ObjectID]bool)
	for _, c := range r.comments {
		if c.UserID == userID && c.IsTopLevel() {
			owned[c.ID] = true
		}
	}
	kept := r.comments[:0]
	for _, c := range r.comments {
		if c.UserID == userID || (c.ParentID != nil && owned[*c.ParentID]) {
			continue
		}
		kept = append(kept, c)
	}
	r.comments = kept
	return nil
}

func (r *MemoryCommentRepository) RemoveUserLikes(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.comments {
		r.comments[i].Likes = pullEntry(r.comments[i].Likes, userID)
	}
	return nil
}

type MemoryFollowRepository struct {
	mu    sync.Mutex
	edges []models.Follower
}

func NewMemoryFollowRepository() *MemoryFollowRepository {
	return &MemoryFollowRepository{}
}

func (r *MemoryFollowRepository) Create(_ context.Context, edge *models.Follower) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e.UserID == edge.UserID && e.FollowTo == edge.FollowTo {
			return ErrDuplicate
		}
	}
	if edge.ID.IsZero() {
		edge.ID = primitive.NewObjectID()
	}
	r.edges = append(r.edges, *edge)
	return nil
}

func (r *MemoryFollowRepository) Delete(_ context.Context, userID, followTo primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.edges {
		if e.UserID == userID && e.FollowTo == followTo {
			r.edges = append(r.edges[:i], r.edges[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *MemoryFollowRepository) Data(_ context.Context, myID, userID primitive.ObjectID) (models.FollowData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var data models.FollowData
	for _, e := range r.edges {
		if e.FollowTo == userID {
			data.FollowersCount++
		}
		if e.UserID == userID {
			data.FollowingCount++
		}
		if myID.IsZero() {
			continue
		}
		if e.UserID == myID && e.FollowTo == userID {
			data.Followed = true
		}
		if e.UserID == userID && e.FollowTo == myID {
			data.Following = true
		}
	}
	return data, nil
}

func (r *MemoryFollowRepository) FindFollowers(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Follower, error) {
	return r.find(func(e models.Follower) bool { return e.FollowTo == userID }, skip, limit)
}

func (r *MemoryFollowRepository) FindFollowing(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Follower, error) {
	return r.find(func(e models.Follower) bool { return e.UserID == userID }, skip, limit)
}

func (r *MemoryFollowRepository) find(match func(models.Follower) bool, skip, limit int64) ([]models.Follower, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []models.Follower{}
	for _, e := range r.edges {
		if match(e) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID.Hex() > matched[j].ID.Hex() })
	return slicePage(matched, skip, limit), nil
}

func (r *MemoryFollowRepository) CountFollowers(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.edges {
		if e.FollowTo == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryFollowRepository) CountFollowing(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.edges {
		if e.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryFollowRepository) Relationship(_ context.Context, myID primitive.ObjectID, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, map[primitive.ObjectID]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	followed := make(map[primitive.ObjectID]bool, len(ids))
	following := make(map[primitive.ObjectID]bool, len(ids))
	if myID.IsZero() {
		return followed, following, nil
	}
	for _, e := range r.edges {
		if e.UserID == myID && wanted[e.FollowTo] {
			followed[e.FollowTo] = true
		}
		if e.FollowTo == myID && wanted[e.UserID] {
			following[e.UserID] = true
		}
	}
	return followed, following, nil
}

func (r *MemoryFollowRepository) DeleteAllFor(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.edges[:0]
	for _, e := range r.edges {
		if e.UserID != userID && e.FollowTo != userID {
			kept = append(kept, e)
		}
	}
	r.edges = kept
	return nil
}

type MemoryRecentRepository struct {
	mu      sync.Mutex
	recents []models.RecentSearch
}

func NewMemoryRecentRepository() *MemoryRecentRepository {
	return &MemoryRecentRepository{}
}

func (r *MemoryRecentRepository) Add(_ context.Context, rec *models.RecentSearch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.recents[:0]
	for _, rs := range r.recents {
		if rs.UserID == rec.UserID && rs.SearchID == rec.SearchID {
			continue
		}
		kept = append(kept, rs)
	}
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	r.recents = append(kept, *rec)
	return nil
}

func (r *MemoryRecentRepository) Find(_ context.Context, userID primitive.ObjectID, limit int64) ([]models.RecentSearch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []models.RecentSearch{}
	for _, rs := range r.recents {
		if rs.UserID == userID {
			matched = append(matched, rs)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID.Hex() > matched[j].ID.Hex() })
	if int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *MemoryRecentRepository) Remove(_ context.Context, userID, searchID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rs := range r.recents {
		if rs.UserID == userID && rs.SearchID == searchID {
			r.recents = append(r.recents[:i], r.recents[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *MemoryRecentRepository) RemoveAll(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.recents[:0]
	for _, rs := range r.recents {
		if rs.UserID != userID {
			kept = append(kept, rs)
		}
	}
	r.recents = kept
	return nil
}

func (r *MemoryRecentRepository) RemoveTarget(_ context.Context, searchID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.recents[:0]
	for _, rs := range r.recents {
		if rs.SearchID != searchID {
			kept = append(kept, rs)
		}
	}
	r.recents = kept
	return nil
}

func clonePost(p models.Post) models.Post {
	p.Likes = append([]models.LikeEntry(nil), p.Likes...)
	p.Saves = append([]models.LikeEntry(nil), p.Saves...)
	p.Media = append([]models.Media(nil), p.Media...)
	return p
}

func cloneComment(c models.Comment) models.Comment {
	c.Likes = append([]models.LikeEntry(nil), c.Likes...)
	return c
}

func pullEntry(entries []models.LikeEntry, userID primitive.ObjectID) []models.LikeEntry {
	kept := entries[:0]
	for _, e := range entries {
		if e.User != userID {
			kept = append(kept, e)
		}
	}
	return kept
}

func slicePage[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && int64(len(items)) > limit {
		items = items[:limit]
	}
	return items
}

var _ UserRepository = (*MemoryUserRepository)(nil)
var _ PostRepository = (*MemoryPostRepository)(nil)
var _ CommentRepository = (*MemoryCommentRepository)(nil)
var _ FollowRepository = (*MemoryFollowRepository)(nil)
var _ RecentRepository = (*MemoryRecentRepository)(nil)
