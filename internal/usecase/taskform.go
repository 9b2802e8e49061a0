package usecase

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var validate = validator.New()

// tagPalette - цвета новых тегов по порядку, серый когда все заняты
var tagPalette = []string{"red", "blue", "green", "yellow", "purple", "pink", "indigo", "orange", "teal", "cyan"}

const fallbackTagColor = "gray"

// PendingFile - файл, ожидающий создания задачи. У него нет серверного id.
type PendingFile struct {
	LocalID string     `json:"local_id"`
	File    FileUpload `json:"-"`
	Name    string     `json:"file_name"`
	Size    int64      `json:"file_size"`
	Preview string     `json:"preview,omitempty"`
}

// PendingComment - комментарий, написанный до создания задачи.
// LocalID генерируется на клиенте и никогда не уходит на сервер.
type PendingComment struct {
	LocalID   string       `json:"local_id"`
	Content   string       `json:"content"`
	Images    []FileUpload `json:"-"`
	CreatedAt time.Time    `json:"created_at"`
}

// DraftPatch - поверхностное слияние полей формы, nil не меняет поле
type DraftPatch struct {
	Title       *string
	Description *string
	Priority    *string
	ColumnID    *string
	StartDate   **time.Time
	DueDate     **time.Time
}

// Draft - изменяемый черновик задачи (создание или редактирование)
type Draft struct {
	TaskID          string
	BoardID         string
	ColumnID        string
	Title           string
	Description     string
	Priority        string
	StartDate       *time.Time
	DueDate         *time.Time
	AssignedMembers []string
	Tags            []entity.Tag
	Checklist       []entity.ChecklistItem
	Attachments     []entity.Attachment
	PendingFiles    []PendingFile
	PendingComments []PendingComment

	// DescriptionExpanded выставляется один раз при открытии формы редактирования
	DescriptionExpanded bool

	original *entity.Task
	previews PreviewStore
	clock    clockwork.Clock
}

// NewDraft - пустой черновик для модалки создания
func NewDraft(boardID, columnID string, previews PreviewStore, clk clockwork.Clock) *Draft {
	return &Draft{
		BoardID:  boardID,
		ColumnID: columnID,
		previews: previews,
		clock:    clk,
	}
}

// EditDraft - черновик существующей задачи
func EditDraft(task *entity.Task, previews PreviewStore, clk clockwork.Clock) *Draft {
	d := &Draft{
		TaskID:              task.ID,
		BoardID:             task.BoardID,
		ColumnID:            task.ColumnID,
		Title:               task.Title,
		Description:         task.Description,
		Priority:            string(task.Priority),
		StartDate:           copyTime(task.StartDate),
		DueDate:             copyTime(task.DueDate),
		AssignedMembers:     slices.Clone(task.AssignedMembers),
		Tags:                slices.Clone(task.Tags),
		Checklist:           slices.Clone(task.Checklist),
		Attachments:         slices.Clone(task.Attachments),
		DescriptionExpanded: strings.TrimSpace(task.Description) != "",
		original:            task,
		previews:            previews,
		clock:               clk,
	}
	return d
}

// IsNew - у задачи еще нет серверного id
func (d *Draft) IsNew() bool {
	return d.TaskID == ""
}

func (d *Draft) Set(p DraftPatch) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Priority != nil {
		d.Priority = *p.Priority
	}
	if p.ColumnID != nil {
		d.ColumnID = *p.ColumnID
	}
	if p.StartDate != nil {
		d.StartDate = copyTime(*p.StartDate)
	}
	if p.DueDate != nil {
		d.DueDate = copyTime(*p.DueDate)
	}
}

// SetDueTime задает время дня для срока независимо от выбранной даты.
// Без даты берется сегодняшний день.
func (d *Draft) SetDueTime(hhmm string) error {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return entity.ErrInvalidDueTime
	}

	base := d.clock.Now()
	if d.DueDate != nil {
		base = *d.DueDate
	}
	due := time.Date(base.Year(), base.Month(), base.Day(), t.Hour(), t.Minute(), 0, 0, base.Location())
	d.DueDate = &due
	return nil
}

// AddTag добавляет тег. Дубликат по точному имени отклоняется.
// Цвет берется у одноименного тега доски, иначе первый свободный из палитры.
func (d *Draft) AddTag(name string, boardTags []entity.Tag) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.ErrEmptyTag
	}
	for _, tag := range d.Tags {
		if tag.Name == name {
			return entity.ErrDuplicateTag
		}
	}

	d.Tags = append(d.Tags, entity.Tag{Name: name, Color: tagColor(name, boardTags, d.Tags)})
	return nil
}

func (d *Draft) RemoveTag(name string) bool {
	for i, tag := range d.Tags {
		if tag.Name == name {
			d.Tags = slices.Delete(d.Tags, i, i+1)
			return true
		}
	}
	return false
}

func tagColor(name string, boardTags, taskTags []entity.Tag) string {
	used := make(map[string]bool)
	for _, tag := range boardTags {
		if tag.Name == name && tag.Color != "" {
			return tag.Color
		}
		used[tag.Color] = true
	}
	for _, tag := range taskTags {
		used[tag.Color] = true
	}
	for _, color := range tagPalette {
		if !used[color] {
			return color
		}
	}
	return fallbackTagColor
}

// AddChecklistItem - пустой текст игнорируется
func (d *Draft) AddChecklistItem(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	d.Checklist = append(d.Checklist, entity.ChecklistItem{ID: uuid.NewString(), Text: text})
	return true
}

func (d *Draft) ToggleChecklistItem(index int) error {
	if index < 0 || index >= len(d.Checklist) {
		return entity.ErrItemNotFound
	}
	d.Checklist[index].Done = !d.Checklist[index].Done
	return nil
}

func (d *Draft) RemoveChecklistItem(index int) error {
	if index < 0 || index >= len(d.Checklist) {
		return entity.ErrItemNotFound
	}
	d.Checklist = slices.Delete(d.Checklist, index, index+1)
	return nil
}

// ToggleMember добавляет или убирает участника, возвращает true если он теперь назначен
func (d *Draft) ToggleMember(memberID string) bool {
	if i := slices.Index(d.AssignedMembers, memberID); i >= 0 {
		d.AssignedMembers = slices.Delete(d.AssignedMembers, i, i+1)
		return false
	}
	d.AssignedMembers = append(d.AssignedMembers, memberID)
	return true
}

// AddFiles буферизует файлы до создания задачи. Отклоненные файлы возвращаются,
// остальные из пакета принимаются.
func (d *Draft) AddFiles(files []FileUpload, policy AcceptPolicy) []FileError {
	var rejected []FileError
	for _, file := range files {
		if err := ValidateFile(&file, policy); err != nil {
			rejected = append(rejected, NewFileError(file.Name, err))
			continue
		}

		pending := PendingFile{
			LocalID: uuid.NewString(),
			File:    file,
			Name:    file.Name,
			Size:    file.Size(),
		}
		if file.IsImage() && d.previews != nil {
			pending.Preview = d.previews.Create(file)
		}
		d.PendingFiles = append(d.PendingFiles, pending)
	}
	return rejected
}

// RemoveFile убирает буферизованный файл по индексу и освобождает превью. Сети нет.
func (d *Draft) RemoveFile(index int) error {
	if index < 0 || index >= len(d.PendingFiles) {
		return entity.ErrPendingNotFound
	}
	d.revoke(d.PendingFiles[index].Preview)
	d.PendingFiles = slices.Delete(d.PendingFiles, index, index+1)
	return nil
}

// AddComment буферизует комментарий текущего пользователя
func (d *Draft) AddComment(content string, images []FileUpload) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(images) == 0 {
		return "", entity.ErrEmptyComment
	}
	for i := range images {
		if err := ValidateFile(&images[i], ImagePolicy); err != nil {
			return "", NewFileError(images[i].Name, err)
		}
	}

	pc := PendingComment{
		LocalID:   uuid.NewString(),
		Content:   content,
		Images:    images,
		CreatedAt: d.clock.Now(),
	}
	d.PendingComments = append(d.PendingComments, pc)
	return pc.LocalID, nil
}

func (d *Draft) UpdateComment(localID, content string) error {
	for i := range d.PendingComments {
		if d.PendingComments[i].LocalID == localID {
			content = strings.TrimSpace(content)
			if content == "" && len(d.PendingComments[i].Images) == 0 {
				return entity.ErrEmptyComment
			}
			d.PendingComments[i].Content = content
			return nil
		}
	}
	return entity.ErrPendingNotFound
}

func (d *Draft) RemoveComment(localID string) error {
	for i := range d.PendingComments {
		if d.PendingComments[i].LocalID == localID {
			d.PendingComments = slices.Delete(d.PendingComments, i, i+1)
			return nil
		}
	}
	return entity.ErrPendingNotFound
}

// Submission - вход для создания задачи. Блокирует только пустой заголовок.
func (d *Draft) Submission() (*entity.CreateTaskInput, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, entity.ErrTitleRequired
	}
	priority, err := entity.ParsePriority(d.Priority)
	if err != nil {
		return nil, err
	}

	in := &entity.CreateTaskInput{
		BoardID:         d.BoardID,
		ColumnID:        d.ColumnID,
		Title:           title,
		Description:     d.Description,
		Priority:        priority,
		StartDate:       copyTime(d.StartDate),
		DueDate:         copyTime(d.DueDate),
		AssignedMembers: slices.Clone(d.AssignedMembers),
		Tags:            slices.Clone(d.Tags),
		Checklist:       slices.Clone(d.Checklist),
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidTaskData, err)
	}
	return in, nil
}

// Changes - патч относительно задачи, с которой открыта форма редактирования
func (d *Draft) Changes() (entity.UpdateTaskInput, error) {
	var in entity.UpdateTaskInput
	if d.original == nil {
		return in, entity.ErrTaskNotPersisted
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		return in, entity.ErrTitleRequired
	}
	priority, err := entity.ParsePriority(d.Priority)
	if err != nil {
		return in, err
	}

	o := d.original
	if title != o.Title {
		in.Title = &title
	}
	if d.Description != o.Description {
		desc := d.Description
		in.Description = &desc
	}
	if priority != o.Priority {
		in.Priority = &priority
	}
	if !sameTime(d.StartDate, o.StartDate) {
		start := copyTime(d.StartDate)
		in.StartDate = &start
	}
	if !sameTime(d.DueDate, o.DueDate) {
		due := copyTime(d.DueDate)
		in.DueDate = &due
	}
	if !slices.Equal(d.AssignedMembers, o.AssignedMembers) {
		members := slices.Clone(d.AssignedMembers)
		in.AssignedMembers = &members
	}
	if !slices.Equal(d.Tags, o.Tags) {
		tags := slices.Clone(d.Tags)
		in.Tags = &tags
	}
	if !slices.Equal(d.Checklist, o.Checklist) {
		checklist := slices.Clone(d.Checklist)
		in.Checklist = &checklist
	}
	return in, nil
}

// Discard освобождает все превью и выбрасывает буферы. Ничего не сохраняется.
func (d *Draft) Discard() {
	d.clearPending()
	d.PendingComments = nil
}

func (d *Draft) clearPending() {
	for _, f := range d.PendingFiles {
		d.revoke(f.Preview)
	}
	d.PendingFiles = nil
}

func (d *Draft) revoke(handle string) {
	if handle != "" && d.previews != nil {
		d.previews.Revoke(handle)
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// IsInvalidInput - ошибка проверки ввода, до удаленного вызова
func IsInvalidInput(err error) bool {
	var fe FileError
	return errors.As(err, &fe) ||
		errors.Is(err, entity.ErrTitleRequired) ||
		errors.Is(err, entity.ErrInvalidPriority) ||
		errors.Is(err, entity.ErrInvalidTaskData) ||
		errors.Is(err, entity.ErrInvalidBoardData) ||
		errors.Is(err, entity.ErrInvalidColumnOrder) ||
		errors.Is(err, entity.ErrEmptyComment) ||
		errors.Is(err, entity.ErrEmptyTag) ||
		errors.Is(err, entity.ErrDuplicateTag) ||
		errors.Is(err, entity.ErrInvalidDueTime)
}
