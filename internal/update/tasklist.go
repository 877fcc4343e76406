package update

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/supplychain-resilience/scr/internal/resource"
	"github.com/supplychain-resilience/scr/internal/supplychain"
	"github.com/supplychain-resilience/scr/internal/user"
)

// homePageSize is the number of supply chains listed per page on the home page.
const homePageSize = 5

type (
	// Home lists the supply chains of the user's department.
	Home struct {
		SupplyChains *resource.Page[*ChainProgress]
		// Updated is the number of the department's supply chains with
		// every update submitted for the current period.
		Updated  int
		Total    int
		Deadline time.Time
	}

	ChainProgress struct {
		*supplychain.SupplyChain
		Updated bool
	}

	// TaskList lists the strategic actions of a supply chain along with the
	// status of their updates for the current reporting period.
	TaskList struct {
		SupplyChain *supplychain.SupplyChain
		Tasks       []Task
		Submitted   int
		Deadline    time.Time
	}

	Task struct {
		Action *supplychain.StrategicAction
		Status Status
		// URL links to where the update should be continued.
		URL string
	}
)

func (s *Service) Home(ctx context.Context, opts resource.PageOptions) (*Home, error) {
	u, err := user.UserFromContext(ctx)
	if err != nil {
		return nil, err
	}
	chains, err := s.supplyChains.ListSupplyChains(ctx, u.DepartmentID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	progress := make([]*ChainProgress, len(chains))
	var updated int
	for i, chain := range chains {
		progress[i] = &ChainProgress{
			SupplyChain: chain,
			Updated:     s.updatedThisPeriod(chain, now),
		}
		if progress[i].Updated {
			updated++
		}
	}
	opts.PageSize = homePageSize
	return &Home{
		SupplyChains: resource.Paginate(progress, opts),
		Updated:      updated,
		Total:        len(chains),
		Deadline:     s.calendar.CurrentDeadline(now),
	}, nil
}

// updatedThisPeriod reports whether every action of the supply chain was
// submitted during the reporting period containing now.
func (s *Service) updatedThisPeriod(chain *supplychain.SupplyChain, now time.Time) bool {
	return chain.LastSubmissionDate != nil && s.calendar.InCurrentPeriod(*chain.LastSubmissionDate, now)
}

func (s *Service) TaskList(ctx context.Context, supplyChainSlug string) (*TaskList, error) {
	chain, err := s.supplyChains.GetSupplyChain(ctx, supplyChainSlug)
	if err != nil {
		return nil, err
	}
	actions, err := s.supplyChains.ListStrategicActions(ctx, chain.ID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	updates, err := s.db.listUpdatesSince(ctx, chain.ID, s.calendar.PeriodStart(now))
	if err != nil {
		return nil, err
	}
	byAction := make(map[resource.ID]*MonthlyUpdate, len(updates))
	for _, u := range updates {
		byAction[u.StrategicActionID] = u
	}

	list := TaskList{SupplyChain: chain, Deadline: s.calendar.CurrentDeadline(now)}
	for _, action := range actions {
		task := Task{Action: action, Status: StatusNotStarted, URL: StartPath(chain.Slug, action.Slug)}
		if u, ok := byAction[action.ID]; ok {
			task.Status = u.Status
			switch u.Status {
			case StatusSubmitted:
				task.URL = ReviewPath(chain.Slug, action.Slug, u.MonthSlug)
				list.Submitted++
			default:
				step, err := s.currentStep(ctx, u, action)
				if err != nil {
					return nil, err
				}
				task.URL = StepPath(chain.Slug, action.Slug, u.MonthSlug, step)
			}
		}
		list.Tasks = append(list.Tasks, task)
	}
	slices.SortStableFunc(list.Tasks, func(a, b Task) int {
		return cmp.Compare(statusOrder(a.Status), statusOrder(b.Status))
	})
	return &list, nil
}

// currentStep is the first step on the path that has not been answered.
func (s *Service) currentStep(ctx context.Context, u *MonthlyUpdate, action *supplychain.StrategicAction) (StepID, error) {
	answers, err := s.db.allAnswers(ctx, u.ID)
	if err != nil {
		return "", err
	}
	for _, step := range s.Path(answers, contextFor(action)) {
		if _, ok := answers[step]; !ok {
			return step, nil
		}
	}
	return Confirm, nil
}

func statusOrder(s Status) int {
	switch s {
	case StatusNotStarted:
		return 0
	case StatusInProgress:
		return 1
	default:
		return 2
	}
}
