package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) >= 2 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		runServe()
	case "classify":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: contentsync classify <url>...")
			os.Exit(1)
		}
		if err := runClassify(os.Stdout, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("contentsync %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`contentsync - A multi-platform content dashboard built with Go, Echo, and templ

Usage:
  contentsync [command] [arguments]

Commands:
  serve             Start the web server (default)
  classify <url>... Print the detected platform for each URL as JSON
  version           Print the contentsync version
  help              Show this help message

Environment:
  SESSION_SECRET         Required: session encryption secret
  CONTENTSYNC_ADDR       Listen address (default :3000)
  CONTENTSYNC_DB         SQLite path (default data/contentsync.db)
  JWT_SECRET             API token signing key (default SESSION_SECRET)
  COOKIE_SECURE          Set to "true" behind HTTPS
  GOOGLE_GEMINI_API_KEY  Enables content generation
  GEMINI_MODEL           Model name (default gemini-2.0-flash)
  STATIC_DIR             Static assets and avatars (default public)

Examples:
  contentsync classify https://youtube.com/@brand https://brand.substack.com
  SESSION_SECRET=change-me contentsync serve`)
}
