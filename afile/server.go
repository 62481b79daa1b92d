package afile

import (
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// WrapFileRoutes maps backing onto a gorilla/mux router so SAVE/LOAD can
// target a remote store instead of the local filesystem: the same wire
// format, a different transport. Grounded on the teacher's fileserv
// package, which wraps an http.FileSystem with mux routes per drive
// letter — here there is exactly one "drive", the program store, and
// GET/PUT replace fileserv's read-only GET-only routing.
func WrapFileRoutes(rtr *mux.Router, backing *Local) {
	rtr.HandleFunc("/files/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]

		switch r.Method {
		case http.MethodGet:
			lines, err := backing.Load(name)
			if err != nil {
				if strings.Contains(err.Error(), "FILE NOT FOUND") {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			for _, ln := range lines {
				io.WriteString(w, ln+"\n")
			}

		case http.MethodPut:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
			if err := backing.Save(name, lines); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}).Methods(http.MethodGet, http.MethodPut)
}
