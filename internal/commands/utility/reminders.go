package utility

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/keshon/textcmd/pkg/jobmgr"
)

const maxRemindersPerUser = 10

type Reminder struct {
	ID        int
	UserID    string
	ChannelID string
	Text      string
	Due       time.Time
}

// Reminders holds pending reminders in memory and schedules each one as a
// delayed job. They do not survive a restart.
type Reminders struct {
	mu     sync.Mutex
	nextID int
	items  map[int]Reminder
	jobs   *jobmgr.Manager
	now    func() time.Time
}

func NewReminders(jobs *jobmgr.Manager) *Reminders {
	return &Reminders{items: make(map[int]Reminder), jobs: jobs, now: time.Now}
}

func jobName(id int) string {
	return "reminder:" + strconv.Itoa(id)
}

// Schedule registers a reminder and calls fire once delay has passed. It
// returns false when the user already has too many pending reminders.
func (r *Reminders) Schedule(rem Reminder, delay time.Duration, fire func(Reminder)) (Reminder, bool) {
	r.mu.Lock()
	if r.countLocked(rem.UserID) >= maxRemindersPerUser {
		r.mu.Unlock()
		return Reminder{}, false
	}
	r.nextID++
	rem.ID = r.nextID
	rem.Due = r.now().Add(delay)
	r.items[rem.ID] = rem
	r.mu.Unlock()

	err := r.jobs.After(jobName(rem.ID), delay, func(context.Context) error {
		r.mu.Lock()
		_, ok := r.items[rem.ID]
		delete(r.items, rem.ID)
		r.mu.Unlock()
		if ok {
			fire(rem)
		}
		return nil
	})
	if err != nil {
		r.mu.Lock()
		delete(r.items, rem.ID)
		r.mu.Unlock()
		return Reminder{}, false
	}
	return rem, true
}

// List returns the pending reminders of userID, soonest first.
func (r *Reminders) List(userID string) []Reminder {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Reminder
	for _, rem := range r.items {
		if rem.UserID == userID {
			out = append(out, rem)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Due.Equal(out[j].Due) {
			return out[i].ID < out[j].ID
		}
		return out[i].Due.Before(out[j].Due)
	})
	return out
}

// Cancel stops reminder id if it belongs to userID.
func (r *Reminders) Cancel(userID string, id int) bool {
	r.mu.Lock()
	rem, ok := r.items[id]
	if !ok || rem.UserID != userID {
		r.mu.Unlock()
		return false
	}
	delete(r.items, id)
	r.mu.Unlock()

	_ = r.jobs.Stop(jobName(id))
	return true
}

func (r *Reminders) countLocked(userID string) int {
	n := 0
	for _, rem := range r.items {
		if rem.UserID == userID {
			n++
		}
	}
	return n
}
