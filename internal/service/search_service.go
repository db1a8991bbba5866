package service

import (
	"log"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"

	"github.com/rizalarfiyan/siakad-backend/internal/model"
)

const studentIndex = "students"

// SearchService keeps the student directory index in Meilisearch so the admin
// dashboard can search by name, username or roll number. All methods are
// no-ops when the client is nil, so the API works without a search backend.
type SearchService interface {
	IndexStudent(student *model.Student) error
	RemoveStudent(id uuid.UUID) error
	SearchStudents(query string) ([]uuid.UUID, error)
	Enabled() bool
}

type studentDocument struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	RollNo   string `json:"rollNo"`
	CourseID string `json:"courseId"`
	Semester int    `json:"semester"`
}

type searchService struct {
	client meilisearch.ServiceManager
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{client: client}
	if client != nil {
		s.initIndex()
	}
	return s
}

func (s *searchService) initIndex() {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        studentIndex,
		PrimaryKey: "id",
	})
	if err != nil {
		log.Printf("Failed to create meilisearch index %q: %v", studentIndex, err)
		return
	}

	_, err = s.client.Index(studentIndex).UpdateSearchableAttributes(&[]string{
		"name", "username", "rollNo",
	})
	if err != nil {
		log.Printf("Failed to update searchable attributes: %v", err)
	}
}

func (s *searchService) Enabled() bool {
	return s.client != nil
}

func (s *searchService) IndexStudent(student *model.Student) error {
	if s.client == nil {
		return nil
	}

	doc := studentDocument{
		ID:       student.ID.String(),
		RollNo:   student.RollNo,
		CourseID: student.CourseID.String(),
		Semester: student.Semester,
	}
	if student.User != nil {
		doc.Name = student.User.Name
		doc.Username = student.User.Username
	}

	_, err := s.client.Index(studentIndex).AddDocuments([]studentDocument{doc}, strPtr("id"))
	return err
}

func (s *searchService) RemoveStudent(id uuid.UUID) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.Index(studentIndex).DeleteDocument(id.String())
	return err
}

func (s *searchService) SearchStudents(query string) ([]uuid.UUID, error) {
	if s.client == nil {
		return nil, nil
	}

	res, err := s.client.Index(studentIndex).Search(query, &meilisearch.SearchRequest{
		Limit: 100,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if id, ok := studentIDFromHit(hit); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// studentIDFromHit decodes one search hit and returns its document id.
// Malformed hits are skipped rather than failing the whole search.
func studentIDFromHit(hit meilisearch.Hit) (uuid.UUID, bool) {
	var doc studentDocument
	if err := hit.Decode(&doc); err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func strPtr(s string) *string {
	return &s
}
