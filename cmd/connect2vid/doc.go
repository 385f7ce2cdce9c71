// Package main hosts the connect2vid CLI entrypoint and command graph.
//
// The root command takes a recording reference (a recording URL, a 12
// character recording id or a previously downloaded .zip) and runs the
// conversion pipeline. Subcommands cover configuration scaffolding, external
// tool checks and the run history.
//
// Keep this package lean: conversion logic lives in internal/pipeline and the
// stage packages; commands here only resolve configuration, build loggers and
// render results.
package main
