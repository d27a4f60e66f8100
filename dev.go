package main

import (
	"log"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
)

// reloadDelay lets a burst of writes to the ROM settle before it is reloaded.
const reloadDelay = 100 * time.Millisecond

// watchROM reloads romFile into a fresh VM through r each time it changes,
// until stop is closed.
func watchROM(r *Runner, romFile string, stop <-chan bool) error {
	romFile = filepath.Clean(romFile)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		watcher.Close()
		return err
	}
	go func() {
		defer watcher.Close()
		var reload <-chan time.Time
		for {
			select {
			case <-reload:
				reload = nil
				if !reloadROM(r, romFile) {
					return
				}
			case ev := <-watcher.Event:
				if filepath.Clean(ev.Name) == romFile && !ev.IsAttrib() && !ev.IsDelete() {
					reload = time.After(reloadDelay)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			case <-stop:
				return
			}
		}
	}()
	return nil
}

// reloadROM swaps a freshly loaded VM into r. It reports false once
// r has finished running.
func reloadROM(r *Runner, romFile string) bool {
	log.Printf("dev: reload %s", filepath.Base(romFile))
	v, err := r.New(romFile)
	if err != nil {
		log.Printf("dev: %v", err)
		return true
	}
	if !r.Reset(v) {
		v.Destroy()
		return false
	}
	return true
}
