package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robfig/ssview"
	"github.com/robfig/ssview/template"
	"github.com/robfig/ssview/view"
)

func (a *app) serveCmd() *cobra.Command {
	var dataFile string
	var cmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered templates over HTTP",
		Long: `Serve the templates over HTTP. The request path names the template: /
renders Index, /blog/post renders blog\post, falling back to Page. Query
parameters are available to the template as arguments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := a.views()
			if err != nil {
				return err
			}
			defer views.Close()
			item, err := a.loadData(dataFile)
			if err != nil {
				return err
			}

			var srv = &http.Server{
				Addr:              net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port)),
				Handler:           newHandler(views, item),
				ReadHeaderTimeout: 10 * time.Second,
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var errc = make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			logger.Info("serving", zap.String("addr", srv.Addr), zap.Strings("themes", a.cfg.Themes))

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			var shutdown, cancel = context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdown); err != nil {
				return err
			}
			if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataFile, "data", "", "YAML file of the item to render")
	cmd.Flags().Int("port", 0, "port to listen on")
	cmd.Flags().Bool("watch", false, "recompile templates as they change")
	bindFlags(a.v, cmd.Flags(), map[string]string{
		"server.port": "port",
		"watch":       "watch",
	})
	return cmd
}

// newHandler renders the template named by the request path.
func newHandler(views *ssview.Views, item map[string]any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var name = strings.Trim(r.URL.Path, "/")
		if name == "" {
			name = "Index"
		}
		var candidates = []template.Candidate{
			{Name: strings.ReplaceAll(name, "/", `\`)},
			{Name: "Page"},
		}

		var args = make(map[string]any)
		for k, v := range r.URL.Query() {
			args[k] = v[0]
		}

		var start = time.Now()
		out, err := views.Viewer(candidates...).Process(item, view.Values(args), nil)
		switch {
		case errors.Is(err, template.ErrTemplateNotFound):
			http.NotFound(w, r)
			return
		case err != nil:
			logger.Error("render failed", zap.String("path", r.URL.Path), zap.Error(err))
			http.Error(w, fmt.Sprintf("render %s: %v", name, err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(out))
		logger.Debug("rendered", zap.String("path", r.URL.Path), zap.Duration("took", time.Since(start)))
	})
}
