// Seeder populates a running instance with demo data through the
// public API: users, groups, memberships, messages and likes. It needs
// an existing admin account (ADMIN_USERNAME / ADMIN_PASSWORD, default
// admin/admin) and the server base URL (BASE_URL).
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

const defaultPassword = "password123"

var baseURL = envOr("BASE_URL", "http://localhost:8080")

func main() {
	gofakeit.Seed(time.Now().UnixNano())

	adminToken := login(envOr("ADMIN_USERNAME", "admin"), envOr("ADMIN_PASSWORD", "admin"))
	if adminToken == "" {
		log.Fatal("could not log in as admin, aborting")
	}

	// Users are created by the admin; each then logs in for its own
	// token so messages are posted as the member who wrote them.
	type seededUser struct {
		id    string
		token string
	}
	users := make([]seededUser, 0, 5)
	for i := 0; i < 5; i++ {
		username := gofakeit.Username()
		id := createUser(adminToken, username, defaultPassword)
		users = append(users, seededUser{id: id, token: login(username, defaultPassword)})
		log.Printf("created user %s", username)
	}

	for i := 0; i < 3; i++ {
		groupID := createGroup(adminToken, fmt.Sprintf("%s-%s", gofakeit.HackerNoun(), gofakeit.Word()))
		log.Printf("created group %s", groupID)

		for _, u := range users {
			addMember(adminToken, groupID, u.id)
		}

		var messageIDs []int64
		for j := 0; j < 10; j++ {
			u := users[gofakeit.Number(0, len(users)-1)]
			messageIDs = append(messageIDs, postMessage(u.token, groupID, gofakeit.HackerPhrase()))
		}

		// Likes: self-likes and duplicates are rejected by the API;
		// just skip those responses.
		for j := 0; j < 15; j++ {
			u := users[gofakeit.Number(0, len(users)-1)]
			likeMessage(u.token, groupID, messageIDs[gofakeit.Number(0, len(messageIDs)-1)])
		}
	}

	log.Println("seeding complete")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func doJSON(method, path, token string, payload any) (map[string]any, int) {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			log.Fatalf("encode payload: %v", err)
		}
	}

	req, err := http.NewRequest(method, baseURL+path, &body)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return out, resp.StatusCode
}

func login(username, password string) string {
	out, status := doJSON(http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if status != http.StatusOK {
		log.Printf("login %s failed: %v", username, out["error"])
		return ""
	}
	token, _ := out["access_token"].(string)
	return token
}

func createUser(token, username, password string) string {
	out, status := doJSON(http.MethodPost, "/users", token, map[string]any{
		"username": username,
		"password": password,
	})
	if status != http.StatusCreated {
		log.Fatalf("create user %s: %v", username, out["error"])
	}
	user := out["user"].(map[string]any)
	return user["id"].(string)
}

func createGroup(token, name string) string {
	out, status := doJSON(http.MethodPost, "/groups", token, map[string]string{"name": name})
	if status != http.StatusCreated {
		log.Fatalf("create group %s: %v", name, out["error"])
	}
	group := out["group"].(map[string]any)
	return group["id"].(string)
}

func addMember(token, groupID, userID string) {
	_, status := doJSON(http.MethodPost, "/groups/"+groupID+"/members", token, map[string]string{
		"user_id": userID,
	})
	if status != http.StatusCreated && status != http.StatusConflict {
		log.Fatalf("add member %s to %s: status %d", userID, groupID, status)
	}
}

func postMessage(token, groupID, text string) int64 {
	out, status := doJSON(http.MethodPost, "/groups/"+groupID+"/messages", token, map[string]string{
		"text": text,
	})
	if status != http.StatusCreated {
		log.Fatalf("post message: status %d: %v", status, out["error"])
	}
	msg := out["message"].(map[string]any)
	return int64(msg["id"].(float64))
}

func likeMessage(token, groupID string, messageID int64) {
	doJSON(http.MethodPost, fmt.Sprintf("/groups/%s/messages/%d/like", groupID, messageID), token, nil)
}
