package web

import "embed"

// StaticFS embeds the browser front end (html/css/js).
//
//go:embed static/*
var StaticFS embed.FS
