package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/kashstash/stash"
	"github.com/kashstash/stash/endpoint"
	"github.com/kashstash/stash/id"
	"github.com/kashstash/stash/internal/settings"
	"github.com/kashstash/stash/kashfiles"
	"github.com/kashstash/stash/payload"
	"github.com/kashstash/stash/share"
	"github.com/kashstash/stash/store/file"
	redisstore "github.com/kashstash/stash/store/redis"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newStash reads the settings file and wires up a Stash on the configured
// store. The caller must defer st.Close().
func newStash() (*stash.Stash, error) {
	path, err := settings.DefaultPath()
	if err != nil {
		return nil, err
	}
	s, err := settings.ReadFromFile(path)
	if err != nil {
		return nil, err
	}

	var st endpoint.Store
	if s.Redis.Addr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     s.Redis.Addr,
			Password: s.Redis.Password,
			DB:       s.Redis.DB,
		})
		st = redisstore.New(rdb, s.Redis.Key, nil)
	} else {
		st, err = file.New(s.ConfigPath, nil)
		if err != nil {
			return nil, fmt.Errorf("opening config store: %w", err)
		}
	}

	return stash.New(
		stash.WithStore(st),
		stash.WithDomain(s.Domain),
		stash.WithRequestTimeout(time.Duration(s.RequestTimeoutSeconds)*time.Second),
		stash.WithConcurrency(s.ShareConcurrency),
	)
}

var rootCmd = &cobra.Command{
	Use:   "kash-stash",
	Short: "Send notes, files and screenshots to your configured endpoints",
}

// endpoint commands

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Manage endpoints",
}

var endpointAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an endpoint and make it current",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := newStash()
		if err != nil {
			return err
		}
		defer st.Close()

		in := endpoint.Input{
			Name:             flagString(cmd, "name"),
			Device:           flagString(cmd, "device"),
			NodeName:         flagString(cmd, "node"),
			ProbeID:          flagString(cmd, "probe-id"),
			ProbeKey:         flagString(cmd, "probe-key"),
			KeepScreenshots:  flagBool(cmd, "keep-screenshots"),
			ScreenshotFolder: flagString(cmd, "screenshot-folder"),
			ConfigDigestID:   flagString(cmd, "config-digest"),
			ConfigDigestNode: flagString(cmd, "config-digest-node"),
		}
		if probeID := flagString(cmd, "digest-probe-id"); probeID != "" {
			in.DigestProbe = &endpoint.Probe{
				NodeName: flagString(cmd, "digest-node"),
				ProbeID:  probeID,
				ProbeKey: flagString(cmd, "digest-probe-key"),
			}
		}
		if probeID := flagString(cmd, "list-probe-id"); probeID != "" {
			in.ListProbe = &endpoint.Probe{
				NodeName: flagString(cmd, "list-node"),
				ProbeID:  probeID,
				ProbeKey: flagString(cmd, "list-probe-key"),
			}
		}

		ep, err := st.Endpoints().Add(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Printf("Added endpoint %s (%s)\n", ep.Name, ep.ID)
		return nil
	},
}

var endpointListCmd = &cobra.Command{
	Use:   "list",
	Short: "List endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := newStash()
		if err != nil {
			return err
		}
		defer st.Close()

		eps := st.Endpoints().List(cmd.Context())
		if len(eps) == 0 {
			fmt.Println("No endpoints configured.")
			return nil
		}

		current, _ := st.Endpoints().Current(cmd.Context())
		for _, ep := range eps {
			marker := " "
			if current != nil && ep.ID.String() == current.ID.String() {
				marker = "*"
			}
			fmt.Printf("%s %s  %s  node:%s probe:%s\n", marker, ep.ID, ep.Name, ep.NodeName, ep.ProbeID)
		}
		return nil
	},
}

var endpointUseCmd = &cobra.Command{
	Use:   "use ID",
	Short: "Select the current endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := newStash()
		if err != nil {
			return err
		}
		defer st.Close()

		epID, err := id.ParseEndpointID(args[0])
		if err != nil {
			return fmt.Errorf("invalid endpoint id: %w", err)
		}
		if err := st.Endpoints().SetCurrent(cmd.Context(), epID); err != nil {
			return err
		}
		fmt.Printf("Current endpoint: %s\n", epID)
		return nil
	},
}

var endpointRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove an endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := newStash()
		if err != nil {
			return err
		}
		defer st.Close()

		epID, err := id.ParseEndpointID(args[0])
		if err != nil {
			return fmt.Errorf("invalid endpoint id: %w", err)
		}
		if err := st.Endpoints().Delete(cmd.Context(), epID); err != nil {
			return err
		}
		fmt.Printf("Removed endpoint %s\n", epID)
		return nil
	},
}

var endpointImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import an endpoint from a mobile config JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		in, err := endpoint.ImportMobile(raw)
		if err != nil {
			return err
		}

		st, err := newStash()
		if err != nil {
			return err
		}
		defer st.Close()

		ep, err := st.Endpoints().Add(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Printf("Imported endpoint %s (%s)\n", ep.Name, ep.ID)
		return nil
	},
}

// note command

var noteCmd = &cobra.Command{
	Use:   "note [TEXT]",
	Short: "Upload a text note (reads stdin when TEXT is omitted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if text == "" {
			raw, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			text = strings.TrimSpace(string(raw))
		}
		if text == "" {
			return fmt.Errorf("nothing to upload")
		}

		st, err := newStash()
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := st.UploadNote(cmd.Context(), text, flagString(cmd, "tags"))
		if err != nil {
			return err
		}
		if !res.OK() {
			return fmt.Errorf("upload failed: %s", res.Error)
		}
		fmt.Printf("Uploaded note (%d ms)\n", res.LatencyMs)
		return nil
	},
}

// file command

var fileCmd = &cobra.Command{
	Use:   "file PATH",
	Short: "Upload a single file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := newStash()
		if err != nil {
			return err
		}
		defer st.Close()

		item, err := classify(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		summary := st.Share(cmd.Context(), flagString(cmd, "tags"), flagString(cmd, "context"),
			[]share.Attachment{item})
		fmt.Println(summary.Message())
		if summary.Outcome != share.OutcomeSucceeded {
			return fmt.Errorf("upload did not succeed")
		}
		return nil
	},
}

// share command

var shareCmd = &cobra.Command{
	Use:   "share PATH|URL...",
	Short: "Upload a batch of files and links concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := newStash()
		if err != nil {
			return err
		}
		defer st.Close()

		items := make([]share.Attachment, 0, len(args))
		for _, arg := range args {
			item, err := classify(cmd.Context(), arg)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		summary := st.Share(cmd.Context(), flagString(cmd, "tags"), flagString(cmd, "context"), items)
		fmt.Printf("%s (%d/%d)\n", summary.Message(), summary.Succeeded, summary.Attempted)
		if summary.Outcome == share.OutcomeFailed {
			return fmt.Errorf("all uploads failed")
		}
		return nil
	},
}

// digest commands

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Read back ingested digests",
}

var digestGetCmd = &cobra.Command{
	Use:   "get [ID]",
	Short: "Fetch a digest's content (--config fetches the config template)",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := newStash()
		if err != nil {
			return err
		}
		defer st.Close()

		var content string
		if flagBool(cmd, "config") {
			content, err = st.FetchConfigDigest(cmd.Context())
		} else {
			if len(args) != 1 {
				return fmt.Errorf("digest id required")
			}
			content, err = st.FetchDigest(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}
		fmt.Println(content)
		return nil
	},
}

var digestListCmd = &cobra.Command{
	Use:   "list TAG",
	Short: "List digests for a tag within the lookback window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lookback, _ := cmd.Flags().GetDuration("lookback")

		st, err := newStash()
		if err != nil {
			return err
		}
		defer st.Close()

		entries, err := st.ListDigests(cmd.Context(), args[0], lookback)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No digests found.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %s  tags:%s\n", e.ID, e.Title, e.Tags)
		}
		return nil
	},
}

// files commands

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Work with a Kash Files instance",
}

// newKashfiles picks the instance named by --instance (or the first
// configured one) from the settings file.
func newKashfiles(cmd *cobra.Command) (*kashfiles.Client, error) {
	path, err := settings.DefaultPath()
	if err != nil {
		return nil, err
	}
	s, err := settings.ReadFromFile(path)
	if err != nil {
		return nil, err
	}

	name := flagString(cmd, "instance")
	inst, ok := s.Kashfile(name)
	if !ok {
		if name == "" {
			return nil, fmt.Errorf("no [[kashfiles]] instance configured")
		}
		return nil, fmt.Errorf("no kashfiles instance named %q", name)
	}

	return kashfiles.NewClient(kashfiles.Instance{
		Name: inst.Name,
		URL:  inst.URL,
		Key:  inst.Key,
	}, time.Duration(s.RequestTimeoutSeconds)*time.Second, nil), nil
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload PATH",
	Short: "Upload a file to the instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kf, err := newKashfiles(cmd)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		contentType := flagString(cmd, "content-type")
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(args[0]))
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		out, err := kf.Upload(cmd.Context(), filepath.Base(args[0]), data,
			contentType, flagString(cmd, "tags"), flagString(cmd, "description"))
		if err != nil {
			return err
		}
		if fid, ok := out["id"]; ok {
			fmt.Printf("Uploaded %s (id %v)\n", filepath.Base(args[0]), fid)
		} else {
			fmt.Printf("Uploaded %s\n", filepath.Base(args[0]))
		}
		return nil
	},
}

var filesSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search stored files by tags and/or free text",
	RunE: func(cmd *cobra.Command, args []string) error {
		kf, err := newKashfiles(cmd)
		if err != nil {
			return err
		}

		infos, err := kf.Search(cmd.Context(), flagString(cmd, "tags"), flagString(cmd, "query"))
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No files found.")
			return nil
		}
		for _, fi := range infos {
			fmt.Printf("%s  %s  %d bytes  tags:%s\n", fi.ID, fi.Filename, fi.Size, fi.Tags)
		}
		return nil
	},
}

var filesGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Download a file's content (stdout, or --out FILE)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kf, err := newKashfiles(cmd)
		if err != nil {
			return err
		}

		data, err := kf.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if out := flagString(cmd, "out"); out != "" {
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", out, len(data))
			return nil
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

// classify turns a CLI argument into a share attachment: http(s) strings
// become links, image files become image uploads, everything else is read
// as text.
func classify(ctx context.Context, arg string) (share.Attachment, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		url := arg
		return share.Attachment{
			Kind: share.KindURL,
			Load: func(context.Context) (*share.Content, error) {
				return &share.Content{Text: url}, nil
			},
		}, nil
	}

	path := arg
	if _, err := os.Stat(path); err != nil {
		return share.Attachment{}, fmt.Errorf("no such file: %s", path)
	}

	load := func(context.Context) (*share.Content, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png":
			return &share.Content{Bytes: data, ImageKind: payload.KindScreenshot}, nil
		case ".jpg", ".jpeg":
			return &share.Content{Bytes: data, ImageKind: payload.KindImage}, nil
		default:
			return &share.Content{Text: string(data)}, nil
		}
	}

	kind := share.KindText
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		kind = share.KindImage
	}
	return share.Attachment{Kind: kind, Load: load}, nil
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func init() {
	endpointAddCmd.Flags().String("name", "", "display name")
	endpointAddCmd.Flags().String("device", "", "device tag merged into every upload")
	endpointAddCmd.Flags().String("node", "", "ingest node name")
	endpointAddCmd.Flags().String("probe-id", "", "ingest probe id")
	endpointAddCmd.Flags().String("probe-key", "", "ingest probe key")
	endpointAddCmd.Flags().String("digest-probe-id", "", "optional probe id for fetching a single digest")
	endpointAddCmd.Flags().String("digest-probe-key", "", "key for the digest fetch probe")
	endpointAddCmd.Flags().String("digest-node", "", "node for the digest fetch probe (default: ingest node)")
	endpointAddCmd.Flags().String("list-probe-id", "", "optional probe id for listing digests")
	endpointAddCmd.Flags().String("list-probe-key", "", "key for the digest listing probe")
	endpointAddCmd.Flags().String("list-node", "", "node for the digest listing probe (default: ingest node)")
	endpointAddCmd.Flags().String("config-digest", "", "digest id holding this device's config template")
	endpointAddCmd.Flags().String("config-digest-node", "", "node for the config digest (default: ingest node)")
	endpointAddCmd.Flags().Bool("keep-screenshots", false, "archive screenshots locally before upload")
	endpointAddCmd.Flags().String("screenshot-folder", "", "folder for archived screenshots")

	noteCmd.Flags().String("tags", "", "comma-separated tags")
	fileCmd.Flags().String("tags", "", "comma-separated tags")
	fileCmd.Flags().String("context", "", "context prompt attached to the upload")
	shareCmd.Flags().String("tags", "", "comma-separated tags")
	shareCmd.Flags().String("context", "", "context prompt attached to each upload")

	digestGetCmd.Flags().Bool("config", false, "fetch the endpoint's config template digest")
	digestListCmd.Flags().Duration("lookback", 24*time.Hour, "how far back to list")

	for _, c := range []*cobra.Command{filesUploadCmd, filesSearchCmd, filesGetCmd} {
		c.Flags().String("instance", "", "kashfiles instance name (default: first configured)")
	}
	filesUploadCmd.Flags().String("tags", "", "comma-separated tags")
	filesUploadCmd.Flags().String("description", "", "file description")
	filesUploadCmd.Flags().String("content-type", "", "override the detected content type")
	filesSearchCmd.Flags().String("tags", "", "comma-separated tag filter")
	filesSearchCmd.Flags().String("query", "", "free-text query")
	filesGetCmd.Flags().String("out", "", "write content to this file instead of stdout")

	endpointCmd.AddCommand(endpointAddCmd)
	endpointCmd.AddCommand(endpointListCmd)
	endpointCmd.AddCommand(endpointUseCmd)
	endpointCmd.AddCommand(endpointRmCmd)
	endpointCmd.AddCommand(endpointImportCmd)

	digestCmd.AddCommand(digestGetCmd)
	digestCmd.AddCommand(digestListCmd)

	filesCmd.AddCommand(filesUploadCmd)
	filesCmd.AddCommand(filesSearchCmd)
	filesCmd.AddCommand(filesGetCmd)

	rootCmd.AddCommand(endpointCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(filesCmd)
}
