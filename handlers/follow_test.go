package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFollowRejectsDuplicates(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")
	bob := s.createUser(t, "bob")
	aliceToken := tokenFor(t, alice.ID)

	if w := s.do(t, "POST", "/follow/"+bob.ID.Hex(), aliceToken, nil); w.Code != http.StatusOK {
		t.Fatalf("follow: got %d: %s", w.Code, w.Body.String())
	}

	// A second follow while already following is rejected.
	if w := s.do(t, "POST", "/follow/"+bob.ID.Hex(), aliceToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("duplicate follow: got %d, want 403", w.Code)
	}

	// Self-follow is rejected.
	if w := s.do(t, "POST", "/follow/"+alice.ID.Hex(), aliceToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("self follow: got %d, want 403", w.Code)
	}

	// Unfollow, then unfollow again: both succeed.
	for i := 0; i < 2; i++ {
		if w := s.do(t, "DELETE", "/follow/"+bob.ID.Hex(), aliceToken, nil); w.Code != http.StatusOK {
			t.Errorf("unfollow #%d: got %d, want 200", i+1, w.Code)
		}
	}
}

func TestFollowData(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")
	bob := s.createUser(t, "bob")

	if w := s.do(t, "POST", "/follow/"+bob.ID.Hex(), tokenFor(t, alice.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("follow: got %d", w.Code)
	}

	ctx := context.Background()

	data, err := s.api.Follows.Data(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !data.Followed || data.Following {
		t.Errorf("alice->bob: followed=%v following=%v, want true/false", data.Followed, data.Following)
	}
	if data.FollowersCount != 1 || data.FollowingCount != 0 {
		t.Errorf("bob counts: followers=%d following=%d, want 1/0", data.FollowersCount, data.FollowingCount)
	}

	data, err = s.api.Follows.Data(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if data.Followed || !data.Following {
		t.Errorf("bob->alice: followed=%v following=%v, want false/true", data.Followed, data.Following)
	}

	// Anonymous caller: both flags stay false.
	data, err = s.api.Follows.Data(ctx, primitive.NilObjectID, bob.ID)
	if err != nil {
		t.Fatal(err)
	}
	if data.Followed || data.Following {
		t.Errorf("anonymous: followed=%v following=%v, want false/false", data.Followed, data.Following)
	}
}

func TestFollowerListWithRelationshipFlags(t *testing.T) {
	s := newTestServer(t)
	me := s.createUser(t, "me")
	star := s.createUser(t, "star")
	mutual := s.createUser(t, "mutual")
	stranger := s.createUser(t, "stranger")

	// star is followed by me, mutual and stranger; star follows nobody.
	// mutual follows me back.
	for _, follower := range []primitive.ObjectID{me.ID, mutual.ID, stranger.ID} {
		if w := s.do(t, "POST", "/follow/"+star.ID.Hex(), tokenFor(t, follower), nil); w.Code != http.StatusOK {
			t.Fatalf("seed follow: got %d", w.Code)
		}
	}
	if w := s.do(t, "POST", "/follow/"+mutual.ID.Hex(), tokenFor(t, me.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("me->mutual: got %d", w.Code)
	}
	if w := s.do(t, "POST", "/follow/"+me.ID.Hex(), tokenFor(t, mutual.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("mutual->me: got %d", w.Code)
	}

	w := s.do(t, "GET", "/follow/followers/star", tokenFor(t, me.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("followers: got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["count"] != float64(3) {
		t.Errorf("followers count = %v, want 3", body["count"])
	}

	flags := map[string]map[string]bool{} // username -> {followed, following}
	for _, raw := range body["users"].([]interface{}) {
		entry := raw.(map[string]interface{})
		username := entry["user"].(map[string]interface{})["username"].(string)
		flags[username] = map[string]bool{
			"followed":  entry["followed"].(bool),
			"following": entry["following"].(bool),
		}
	}

	if !flags["mutual"]["followed"] || !flags["mutual"]["following"] {
		t.Errorf("mutual flags = %v, want both true", flags["mutual"])
	}
	if flags["stranger"]["followed"] || flags["stranger"]["following"] {
		t.Errorf("stranger flags = %v, want both false", flags["stranger"])
	}
	if flags["me"]["followed"] {
		t.Errorf("own entry reports followed=true")
	}

	// following list of me: star is not there, mutual is.
	w = s.do(t, "GET", "/follow/following/me", tokenFor(t, star.ID), nil)
	body = decode(t, w)
	if body["count"] != float64(2) {
		t.Errorf("me following count = %v, want 2 (star, mutual)", body["count"])
	}
}

func TestRemoveFollower(t *testing.T) {
	s := newTestServer(t)
	me := s.createUser(t, "me")
	fan := s.createUser(t, "fan")

	if w := s.do(t, "POST", "/follow/"+me.ID.Hex(), tokenFor(t, fan.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("fan follows me: got %d", w.Code)
	}

	if w := s.do(t, "DELETE", "/follow/follower/"+fan.ID.Hex(), tokenFor(t, me.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("remove follower: got %d", w.Code)
	}

	count, err := s.api.Follows.CountFollowers(context.Background(), me.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("followers after removal = %d, want 0", count)
	}
}

func TestFollowMissingUser(t *testing.T) {
	s := newTestServer(t)
	alice := s.createUser(t, "alice")

	w := s.do(t, "POST", "/follow/000000000000000000000000", tokenFor(t, alice.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("follow missing user: got %d, want 404", w.Code)
	}
}
