package lesson

import (
	"context"

	"github.com/pot-code/scorm-courseware/internal/infrastructure/driver"
)

// LessonSQL LessonRepository on the catalog table
type LessonSQL struct {
	Conn driver.ITransactionalDB
}

var _ LessonRepository = &LessonSQL{}

func NewLessonRepository(Conn driver.ITransactionalDB) *LessonSQL {
	return &LessonSQL{
		Conn: Conn,
	}
}

func (repo *LessonSQL) GetCourseLessons(ctx context.Context) ([]*Lesson, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    l.id, l."index", l."name" title
FROM
    lesson l
ORDER BY
    l."index" ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Lesson
	for rows.Next() {
		item := new(Lesson)
		if err := rows.Scan(&item.ID, &item.Index, &item.Title); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}
