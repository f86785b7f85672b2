package ports

import "github.com/crowdescrow/escrowd/internal/core/domain"

type RepoManager interface {
	Subjects() domain.SubjectRepository
	Params() domain.ParamsRepository
	Close()
}
