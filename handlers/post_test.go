package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"photogram/models"
)

func createPost(t *testing.T, s *testServer, token string, owner models.User, text string) string {
	t.Helper()
	dest := s.media.Root() + "/" + owner.ID.Hex() + "/posts/" + owner.ID.Hex() + "_seed_1.jpg"
	w := s.do(t, "POST", "/posts", token, map[string]interface{}{
		"text":   text,
		"aspect": 1.0,
		"media": []map[string]interface{}{
			{"dest": dest, "type": "image", "styles": map[string]string{"transform": "scale(1)"}},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: got %d: %s", w.Code, w.Body.String())
	}
	post := decode(t, w)["post"].(map[string]interface{})
	return post["_id"].(string)
}

func TestCreateAndGetPost(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "poster")
	token := tokenFor(t, user.ID)

	id := createPost(t, s, token, user, "  hi  ")

	w := s.do(t, "GET", "/posts/"+id, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get post: got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)

	post := body["post"].(map[string]interface{})
	if post["text"] != "hi" {
		t.Errorf("text = %q, want trimmed %q", post["text"], "hi")
	}

	author := body["user"].(map[string]interface{})
	if author["username"] != "poster" {
		t.Errorf("author username = %v, want poster", author["username"])
	}
	if _, present := author["email"]; present {
		t.Error("author projection leaked email")
	}

	if body["liked"] != false || body["saved"] != false {
		t.Errorf("fresh post: liked=%v saved=%v, want false/false", body["liked"], body["saved"])
	}
}

func TestLikeIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "owner")
	fan := s.createUser(t, "fan")
	ownerToken := tokenFor(t, owner.ID)
	fanToken := tokenFor(t, fan.ID)

	id := createPost(t, s, ownerToken, owner, "pic")

	// Liking twice leaves exactly one entry.
	for i := 0; i < 2; i++ {
		if w := s.do(t, "POST", "/posts/like/"+id, fanToken, nil); w.Code != http.StatusOK {
			t.Fatalf("like #%d: got %d", i+1, w.Code)
		}
	}

	w := s.do(t, "GET", "/posts/"+id, fanToken, nil)
	body := decode(t, w)
	if body["likesCount"] != float64(1) {
		t.Errorf("likesCount = %v after double like, want 1", body["likesCount"])
	}
	if body["liked"] != true {
		t.Error("liked flag not set for the liker")
	}

	// Removing a like that is not there is a no-op success.
	if w := s.do(t, "DELETE", "/posts/like/"+id, ownerToken, nil); w.Code != http.StatusOK {
		t.Errorf("unlike without like: got %d, want 200", w.Code)
	}
	if w := s.do(t, "DELETE", "/posts/like/"+id, fanToken, nil); w.Code != http.StatusOK {
		t.Errorf("unlike: got %d, want 200", w.Code)
	}

	w = s.do(t, "GET", "/posts/"+id, fanToken, nil)
	if got := decode(t, w)["likesCount"]; got != float64(0) {
		t.Errorf("likesCount = %v after unlike, want 0", got)
	}
}

func TestSaveToggleAndSavedList(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "owner")
	reader := s.createUser(t, "reader")
	ownerToken := tokenFor(t, owner.ID)
	readerToken := tokenFor(t, reader.ID)

	id := createPost(t, s, ownerToken, owner, "keep this")

	for i := 0; i < 2; i++ {
		if w := s.do(t, "POST", "/posts/save/"+id, readerToken, nil); w.Code != http.StatusOK {
			t.Fatalf("save #%d: got %d", i+1, w.Code)
		}
	}

	w := s.do(t, "GET", "/user/saved", readerToken, nil)
	body := decode(t, w)
	posts := body["posts"].([]interface{})
	if len(posts) != 1 {
		t.Fatalf("saved list has %d posts, want 1", len(posts))
	}

	if w := s.do(t, "DELETE", "/posts/save/"+id, readerToken, nil); w.Code != http.StatusOK {
		t.Fatalf("unsave: got %d", w.Code)
	}
	w = s.do(t, "GET", "/user/saved", readerToken, nil)
	if got := decode(t, w)["posts"].([]interface{}); len(got) != 0 {
		t.Errorf("saved list has %d posts after unsave, want 0", len(got))
	}
}

func TestDeletePostCascades(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "owner")
	other := s.createUser(t, "other")
	ownerToken := tokenFor(t, owner.ID)
	otherToken := tokenFor(t, other.ID)

	// A post with a real media file on disk.
	mediaDir := filepath.Join(s.media.Root(), owner.ID.Hex(), "posts")
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		t.Fatal(err)
	}
	fileName := owner.ID.Hex() + "_abc123_1.jpg"
	filePath := filepath.Join(mediaDir, fileName)
	if err := os.WriteFile(filePath, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	dest := s.media.Root() + "/" + owner.ID.Hex() + "/posts/" + fileName

	w := s.do(t, "POST", "/posts", ownerToken, map[string]interface{}{
		"text":   "with file",
		"aspect": 1.0,
		"media": []map[string]interface{}{
			{"dest": dest, "type": "image", "styles": map[string]string{}},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: %d: %s", w.Code, w.Body.String())
	}
	id := decode(t, w)["post"].(map[string]interface{})["_id"].(string)

	// Comments on the post, one with a reply.
	w = s.do(t, "POST", "/comment/"+id, otherToken, map[string]interface{}{"text": "nice"})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment: %d", w.Code)
	}
	commentID := decode(t, w)["comment"].(map[string]interface{})["_id"].(string)
	if w = s.do(t, "POST", "/reply/"+commentID, ownerToken, map[string]interface{}{"text": "thanks"}); w.Code != http.StatusCreated {
		t.Fatalf("reply: %d", w.Code)
	}

	// A stranger cannot delete it.
	if w = s.do(t, "DELETE", "/posts/"+id, otherToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("foreign delete: got %d, want 403", w.Code)
	}

	if w = s.do(t, "DELETE", "/posts/"+id, ownerToken, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: got %d: %s", w.Code, w.Body.String())
	}

	if w = s.do(t, "GET", "/posts/"+id, ownerToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("fetch after delete: got %d, want 404", w.Code)
	}

	postID, _ := primitive.ObjectIDFromHex(id)
	count, err := s.api.Comments.CountByPost(context.Background(), postID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("comments left after post delete: %d, want 0", count)
	}

	if _, err := os.Stat(filePath); !os.IsNotExist(err) {
		t.Errorf("media file still on disk after post delete")
	}
}

func TestCreatePostRejectsForeignMedia(t *testing.T) {
	s := newTestServer(t)
	victim := s.createUser(t, "victim")
	attacker := s.createUser(t, "attacker")
	attackerToken := tokenFor(t, attacker.ID)

	// A file owned by the victim, on disk.
	victimDir := filepath.Join(s.media.Root(), victim.ID.Hex(), "posts")
	if err := os.MkdirAll(victimDir, 0o755); err != nil {
		t.Fatal(err)
	}
	fileName := victim.ID.Hex() + "_aaa_1.jpg"
	victimFile := filepath.Join(victimDir, fileName)
	if err := os.WriteFile(victimFile, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	victimDest := s.media.Root() + "/" + victim.ID.Hex() + "/posts/" + fileName

	// A post may only reference files in the author's own directory.
	w := s.do(t, "POST", "/posts", attackerToken, map[string]interface{}{
		"text":   "not mine",
		"aspect": 1.0,
		"media": []map[string]interface{}{
			{"dest": victimDest, "type": "image", "styles": map[string]string{}},
		},
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("post with foreign media: got %d, want 403: %s", w.Code, w.Body.String())
	}

	if _, err := os.Stat(victimFile); err != nil {
		t.Errorf("victim's file gone after rejected create: %v", err)
	}
}

func TestUserPostsCursorPagination(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "chrono")
	token := tokenFor(t, user.ID)

	// Seed posts directly so ids are strictly increasing.
	for i := 0; i < 5; i++ {
		post := models.Post{
			UserID:    user.ID,
			Text:      fmt.Sprintf("post %d", i),
			Aspect:    1,
			Media:     []models.Media{{Dest: "d", Type: "image"}},
			CreatedAt: time.Now().Unix(),
		}
		if err := s.api.Posts.Create(context.Background(), &post); err != nil {
			t.Fatal(err)
		}
	}

	w := s.do(t, "GET", "/user/posts/chrono?limit=2", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("page 1: got %d: %s", w.Code, w.Body.String())
	}
	first := decode(t, w)["posts"].([]interface{})
	if len(first) != 2 {
		t.Fatalf("page 1 has %d posts, want 2", len(first))
	}
	newest := first[0].(map[string]interface{})["post"].(map[string]interface{})
	if newest["text"] != "post 4" {
		t.Errorf("newest first: got %q, want %q", newest["text"], "post 4")
	}

	lastID := first[1].(map[string]interface{})["post"].(map[string]interface{})["_id"].(string)
	w = s.do(t, "GET", "/user/posts/chrono?limit=2&lastId="+lastID, token, nil)
	second := decode(t, w)["posts"].([]interface{})
	if len(second) != 2 {
		t.Fatalf("page 2 has %d posts, want 2", len(second))
	}
	if got := second[0].(map[string]interface{})["post"].(map[string]interface{})["text"]; got != "post 2" {
		t.Errorf("cursor page starts at %q, want %q", got, "post 2")
	}
}

func TestUserReelsFiltersVideo(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "reeler")
	token := tokenFor(t, user.ID)

	for i, mediaType := range []string{"image", "video", "image", "video"} {
		post := models.Post{
			UserID:    user.ID,
			Text:      fmt.Sprintf("m%d", i),
			Aspect:    1,
			Media:     []models.Media{{Dest: "d", Type: mediaType}},
			CreatedAt: time.Now().Unix(),
		}
		if err := s.api.Posts.Create(context.Background(), &post); err != nil {
			t.Fatal(err)
		}
	}

	w := s.do(t, "GET", "/user/reels/reeler", token, nil)
	posts := decode(t, w)["posts"].([]interface{})
	if len(posts) != 2 {
		t.Fatalf("reels: got %d posts, want 2", len(posts))
	}
	for _, p := range posts {
		media := p.(map[string]interface{})["post"].(map[string]interface{})["media"].([]interface{})
		if media[0].(map[string]interface{})["type"] != "video" {
			t.Error("reel page contains a non-video post")
		}
	}
}

func TestEditPost(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "editor")
	other := s.createUser(t, "lurker")
	ownerToken := tokenFor(t, owner.ID)

	id := createPost(t, s, ownerToken, owner, "before")

	w := s.do(t, "PATCH", "/posts/"+id, tokenFor(t, other.ID), map[string]interface{}{"text": "hacked"})
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign edit: got %d, want 403", w.Code)
	}

	w = s.do(t, "PATCH", "/posts/"+id, ownerToken, map[string]interface{}{
		"text":         " after ",
		"hideComments": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("edit: got %d: %s", w.Code, w.Body.String())
	}

	w = s.do(t, "GET", "/posts/"+id, ownerToken, nil)
	post := decode(t, w)["post"].(map[string]interface{})
	if post["text"] != "after" {
		t.Errorf("edited text = %q, want %q", post["text"], "after")
	}
	if post["hideComments"] != true {
		t.Error("hideComments not updated")
	}
	if post["hideLikes"] != false {
		t.Error("hideLikes changed without being sent")
	}
}
