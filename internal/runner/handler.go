package runner

import "net/http"

// Handler exposes the runner as an HTTP trigger: any request starts one
// run and the response mirrors the run's Result.
func (r *Runner) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		res := r.Run(req.Context())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(res.StatusCode)
		w.Write(res.Body)
	})
}
