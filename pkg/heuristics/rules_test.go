package heuristics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesCompile(t *testing.T) {
	rules := Default()

	assert.Equal(t, []string{
		"already_deployed", "has_frontend", "has_cicd", "multiple_environments",
		"uses_containerization", "uses_iac", "high_availability",
	}, rules.DirectoryFeatures())
	assert.NotEmpty(t, rules.DeploymentRules)
	assert.NotEmpty(t, rules.FrameworkRules)
}

func TestDeployment(t *testing.T) {
	rules := Default()

	tests := []struct {
		name string
		in   Input
		want string
	}{
		{"streamlit repo name", Input{Repo: "acme/Streamlit-demo"}, "Streamlit"},
		{"streamlit beats vercel", Input{Directory: "vercel.json", Code: "import streamlit as st"}, "Streamlit"},
		{"vercel config", Input{Directory: "./VERCEL.json\nsrc/"}, "Vercel"},
		{"next config without aws", Input{Directory: "next.config.js"}, "Vercel"},
		{"firebase rc", Input{Directory: ".firebaserc"}, "Firebase"},
		{"firebase initialize", Input{Code: "firebase.initializeApp(cfg)"}, "Firebase"},
		{"aws serverless", Input{Directory: "serverless.yml"}, "AWS"},
		{"next config with aws falls through", Input{Directory: "next.config.js\nserverless.yml", Code: "aws lambda"}, "AWS"},
		{"github pages", Input{Directory: "_config.yml", Code: "https://me.github.io"}, "GitHub Pages"},
		{"netlify", Input{Directory: "netlify.toml"}, "Netlify"},
		{"digital ocean", Input{Code: "digitalocean app platform deploy"}, "Digital Ocean"},
		{"google cloud", Input{Code: "https://x.appspot.com"}, "Google Cloud"},
		{"npm", Input{Directory: "package.json", Code: `"private": false ... npm publish`}, "NPM"},
		{"heroku", Input{Directory: "Procfile"}, "Heroku"},
		{"replit", Input{Directory: ".replit"}, "Replit"},
		{"nothing", Input{Repo: "a/b", Directory: "main.go", Code: "package main"}, Unknown},
		{"empty", Input{}, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Deployment(tt.in))
		})
	}
}

func TestFramework(t *testing.T) {
	rules := Default()

	tests := []struct {
		name string
		in   Input
		want string
	}{
		{"next", Input{Directory: "next.config.js"}, "Next.js"},
		{"angular json", Input{Directory: "angular.json"}, "Angular"},
		{"vue by content", Input{Code: "createApp(App) // vue"}, "Vue"},
		{"streamlit", Input{Code: "import streamlit as st\nst.write(1)"}, "Streamlit"},
		{"django", Input{Directory: "myproject/django_app"}, "Django"},
		{"rails", Input{Directory: "bin/rails"}, "Ruby on Rails"},
		{"react from package.json", Input{Directory: "package.json", Code: `{"dependencies": {"react": "18"}}`}, "React"},
		{"react excluded by next", Input{Directory: "package.json", Code: `{"react": "18", "next": "14"}`}, Unknown},
		{"angular from package.json", Input{Directory: "package.json", Code: `"@angular/core"`}, "Angular"},
		{"vue from package.json", Input{Directory: "package.json", Code: `"vue": "3"`}, "Vue"},
		{"unknown", Input{Directory: "main.go"}, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Framework(tt.in))
		})
	}
}

func TestDirectory(t *testing.T) {
	rules := Default()

	found := rules.Directory("repo/\n  .github/workflows/ci.yml\n  Dockerfile\n  terraform/main.tf\n")

	assert.Len(t, found, 7)
	assert.True(t, found["has_cicd"])
	assert.True(t, found["uses_containerization"])
	assert.True(t, found["uses_iac"])
	assert.False(t, found["high_availability"])
	assert.False(t, found["has_frontend"])
}

func TestDetect(t *testing.T) {
	d := Default().Detect(Input{Repo: "a/b", Directory: "netlify.toml\npublic/index.html\nnext.config.js", Code: "aws"})

	assert.Equal(t, "Netlify", d.Deployment)
	assert.Equal(t, "Next.js", d.Framework)
	assert.True(t, d.Directory["has_frontend"])
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"bad yaml":           "deployment: [",
		"unknown prefix":     "deployment:\n  - label: X\n    any: [[\"path:x\"]]\n",
		"missing prefix":     "framework:\n  - label: X\n    any: [[\"x\"]]\n",
		"no clauses":         "framework:\n  - label: X\n",
		"empty clause":       "framework:\n  - label: X\n    any: [[]]\n",
		"no label":           "framework:\n  - any: [[\"file:x\"]]\n",
		"duplicate feature":  "directory:\n  - name: a\n    patterns: [x]\n  - name: a\n    patterns: [y]\n",
		"directory no match": "directory:\n  - name: a\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_CustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
deployment:
  - label: Fly.io
    any:
      - ["file:fly.toml"]
framework:
  - label: Gin
    any:
      - ["content:github.com/gin-gonic/gin", "!content:echo"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := Load(path)
	require.NoError(t, err)

	in := Input{Directory: "fly.toml", Code: `import "github.com/gin-gonic/gin"`}
	assert.Equal(t, "Fly.io", rules.Deployment(in))
	assert.Equal(t, "Gin", rules.Framework(in))
	assert.Empty(t, rules.DirectoryFeatures())
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	rules, err := Load("")
	require.NoError(t, err)
	assert.Len(t, rules.DirectoryFeatures(), 7)
}

func TestParseTerm(t *testing.T) {
	term, err := parseTerm(`!content:"Private": false`)
	require.NoError(t, err)
	assert.True(t, term.negate)
	assert.Equal(t, termContent, term.kind)
	assert.Equal(t, `"private": false`, term.value)
}
