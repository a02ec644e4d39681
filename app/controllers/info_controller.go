package controllers

import "net/http"

// Info describes the running service.
type Info struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Docs        string `json:"docs"`
}

// InfoHandler serves the service description at the root path.
func InfoHandler(version string) http.HandlerFunc {
	info := Info{
		Name:        "mingle",
		Version:     version,
		Description: "Time-boxed topic posts with likes, dislikes and comments",
		Docs:        "/api/posts",
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sendJSON(w, http.StatusOK, info)
	}
}

// Health reports that the process is serving requests.
func Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
