package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCommentPagination(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "owner")
	token := tokenFor(t, owner.ID)
	postID := createPost(t, s, token, owner, "thread")

	// 7 top-level comments, page size 3 -> 3 pages.
	for i := 0; i < 7; i++ {
		w := s.do(t, "POST", "/comment/"+postID, token, map[string]interface{}{
			"text": fmt.Sprintf("comment %d", i),
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("comment %d: got %d", i, w.Code)
		}
	}

	w := s.do(t, "GET", "/comment/"+postID+"?page=1&limit=3", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("page 1: got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["pages"] != float64(3) {
		t.Errorf("pages = %v, want 3", body["pages"])
	}
	if body["commentsCount"] != float64(7) {
		t.Errorf("commentsCount = %v, want 7", body["commentsCount"])
	}
	comments := body["comments"].([]interface{})
	if len(comments) != 3 {
		t.Fatalf("page 1 has %d comments, want 3", len(comments))
	}
	// Newest first.
	first := comments[0].(map[string]interface{})["comment"].(map[string]interface{})
	if first["text"] != "comment 6" {
		t.Errorf("first comment = %q, want %q", first["text"], "comment 6")
	}

	w = s.do(t, "GET", "/comment/"+postID+"?page=3&limit=3", token, nil)
	if got := len(decode(t, w)["comments"].([]interface{})); got != 1 {
		t.Errorf("last page has %d comments, want 1", got)
	}

	// One page past the end is rejected.
	w = s.do(t, "GET", "/comment/"+postID+"?page=4&limit=3", token, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("page out of range: got %d, want 403", w.Code)
	}
	if got := decode(t, w)["pages"]; got != float64(3) {
		t.Errorf("out-of-range response pages = %v, want 3", got)
	}
}

func TestReplyCountsOnCommentPage(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "owner")
	token := tokenFor(t, owner.ID)
	postID := createPost(t, s, token, owner, "counts")

	var commentIDs []string
	for i := 0; i < 3; i++ {
		w := s.do(t, "POST", "/comment/"+postID, token, map[string]interface{}{"text": fmt.Sprintf("c%d", i)})
		commentIDs = append(commentIDs, decode(t, w)["comment"].(map[string]interface{})["_id"].(string))
	}
	// c0 gets two replies, c2 one, c1 none.
	for _, target := range []string{commentIDs[0], commentIDs[0], commentIDs[2]} {
		if w := s.do(t, "POST", "/reply/"+target, token, map[string]interface{}{"text": "r"}); w.Code != http.StatusCreated {
			t.Fatalf("reply: got %d", w.Code)
		}
	}

	w := s.do(t, "GET", "/comment/"+postID, token, nil)
	wantCounts := map[string]float64{commentIDs[0]: 2, commentIDs[1]: 0, commentIDs[2]: 1}
	for _, raw := range decode(t, w)["comments"].([]interface{}) {
		entry := raw.(map[string]interface{})
		id := entry["comment"].(map[string]interface{})["_id"].(string)
		if entry["repliesCount"] != wantCounts[id] {
			t.Errorf("comment %s repliesCount = %v, want %v", id, entry["repliesCount"], wantCounts[id])
		}
	}
}

func TestRepliesOrderAndFlattening(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "owner")
	token := tokenFor(t, owner.ID)
	postID := createPost(t, s, token, owner, "deep")

	w := s.do(t, "POST", "/comment/"+postID, token, map[string]interface{}{"text": "root"})
	rootID := decode(t, w)["comment"].(map[string]interface{})["_id"].(string)

	w = s.do(t, "POST", "/reply/"+rootID, token, map[string]interface{}{"text": "first reply"})
	replyID := decode(t, w)["comment"].(map[string]interface{})["_id"].(string)

	// Replying to a reply lands under the top-level parent.
	w = s.do(t, "POST", "/reply/"+replyID, token, map[string]interface{}{"text": "second reply"})
	if w.Code != http.StatusCreated {
		t.Fatalf("reply to reply: got %d", w.Code)
	}
	nested := decode(t, w)["comment"].(map[string]interface{})
	if nested["parentId"] != rootID {
		t.Errorf("reply-to-reply parentId = %v, want root %s", nested["parentId"], rootID)
	}

	w = s.do(t, "GET", "/reply/"+rootID, token, nil)
	body := decode(t, w)
	if body["repliesCount"] != float64(2) {
		t.Fatalf("repliesCount = %v, want 2", body["repliesCount"])
	}
	replies := body["replies"].([]interface{})
	got0 := replies[0].(map[string]interface{})["comment"].(map[string]interface{})["text"]
	got1 := replies[1].(map[string]interface{})["comment"].(map[string]interface{})["text"]
	// Oldest first.
	if got0 != "first reply" || got1 != "second reply" {
		t.Errorf("reply order = [%v, %v], want oldest first", got0, got1)
	}

	// Replying to a missing comment is a 404.
	if w = s.do(t, "POST", "/reply/000000000000000000000000", token, map[string]interface{}{"text": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("reply to missing: got %d, want 404", w.Code)
	}
}

func TestDeleteCommentRemovesOnlyItsReplies(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "owner")
	other := s.createUser(t, "other")
	ownerToken := tokenFor(t, owner.ID)
	postID := createPost(t, s, ownerToken, owner, "tree")

	w := s.do(t, "POST", "/comment/"+postID, ownerToken, map[string]interface{}{"text": "doomed"})
	doomedID := decode(t, w)["comment"].(map[string]interface{})["_id"].(string)
	w = s.do(t, "POST", "/comment/"+postID, ownerToken, map[string]interface{}{"text": "survivor"})
	survivorID := decode(t, w)["comment"].(map[string]interface{})["_id"].(string)

	s.do(t, "POST", "/reply/"+doomedID, ownerToken, map[string]interface{}{"text": "going too"})
	s.do(t, "POST", "/reply/"+survivorID, ownerToken, map[string]interface{}{"text": "staying"})

	// Only the author may delete.
	if w = s.do(t, "DELETE", "/comment/"+doomedID, tokenFor(t, other.ID), nil); w.Code != http.StatusForbidden {
		t.Errorf("foreign delete: got %d, want 403", w.Code)
	}

	if w = s.do(t, "DELETE", "/comment/"+doomedID, ownerToken, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: got %d", w.Code)
	}

	w = s.do(t, "GET", "/comment/"+postID, ownerToken, nil)
	body := decode(t, w)
	if body["commentsCount"] != float64(1) {
		t.Errorf("commentsCount = %v after delete, want 1", body["commentsCount"])
	}
	left := body["comments"].([]interface{})
	if len(left) != 1 {
		t.Fatalf("%d top-level comments left, want 1", len(left))
	}
	if got := left[0].(map[string]interface{})["comment"].(map[string]interface{})["text"]; got != "survivor" {
		t.Errorf("remaining comment = %q, want survivor", got)
	}

	// The survivor's reply is untouched.
	w = s.do(t, "GET", "/reply/"+survivorID, ownerToken, nil)
	if got := decode(t, w)["repliesCount"]; got != float64(1) {
		t.Errorf("survivor repliesCount = %v, want 1", got)
	}
}

func TestCommentLikeToggle(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "owner")
	fan := s.createUser(t, "fan")
	ownerToken := tokenFor(t, owner.ID)
	fanToken := tokenFor(t, fan.ID)
	postID := createPost(t, s, ownerToken, owner, "likeable")

	w := s.do(t, "POST", "/comment/"+postID, ownerToken, map[string]interface{}{"text": "like me"})
	commentID := decode(t, w)["comment"].(map[string]interface{})["_id"].(string)

	for i := 0; i < 2; i++ {
		if w := s.do(t, "POST", "/comment/like/"+commentID, fanToken, nil); w.Code != http.StatusOK {
			t.Fatalf("like #%d: got %d", i+1, w.Code)
		}
	}

	w = s.do(t, "GET", "/comment/"+postID, fanToken, nil)
	entry := decode(t, w)["comments"].([]interface{})[0].(map[string]interface{})
	if entry["likesCount"] != float64(1) {
		t.Errorf("likesCount = %v after double like, want 1", entry["likesCount"])
	}
	if entry["liked"] != true {
		t.Error("liked flag not set for the liker")
	}

	// The owner never liked it.
	w = s.do(t, "GET", "/comment/"+postID, ownerToken, nil)
	if got := decode(t, w)["comments"].([]interface{})[0].(map[string]interface{})["liked"]; got != false {
		t.Errorf("owner's liked flag = %v, want false", got)
	}

	if w = s.do(t, "POST", "/comment/like/000000000000000000000000", fanToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("like missing comment: got %d, want 404", w.Code)
	}
}
