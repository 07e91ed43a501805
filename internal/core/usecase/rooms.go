package usecase

import (
	"context"
	"time"

	"roomfinder/internal/contextkeys"
	"roomfinder/internal/contracts"
	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/port"
)

// RoomManager - кабинет арендодателя: список, создание, правка и удаление своих комнат.
type RoomManager struct {
	api     port.OwnerRoomsAPI
	session port.SessionHolderPort
	now     func() time.Time
}

func NewRoomManager(api port.OwnerRoomsAPI, session port.SessionHolderPort) *RoomManager {
	return &RoomManager{api: api, session: session, now: time.Now}
}

// requireLandlord проверяет роль до любого обращения к backend.
func (m *RoomManager) requireLandlord() (domain.User, error) {
	user, ok := m.session.User()
	if !ok {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	if !user.IsLandlord() {
		return domain.User{}, domain.ErrLandlordOnly
	}
	return user, nil
}

func (m *RoomManager) logger(ctx context.Context, useCase string, user domain.User) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": useCase,
		"user_id":  user.ID,
	})
}

// MyRooms возвращает комнаты владельца. Комнате без фотографий подставляется заглушка.
func (m *RoomManager) MyRooms(ctx context.Context) ([]domain.OwnedRoom, error) {
	user, err := m.requireLandlord()
	if err != nil {
		return nil, err
	}
	ucLogger := m.logger(ctx, "MyRooms", user)

	rooms, err := m.api.MyRooms(ctx)
	if err != nil {
		ucLogger.Error("Failed to list owner rooms", err, nil)
		return nil, err
	}
	for i := range rooms {
		if len(rooms[i].Images) == 0 {
			rooms[i].Images = []string{contracts.PlaceholderImage(rooms[i].ID)}
		}
	}
	ucLogger.Debug("Owner rooms loaded", port.Fields{"count": len(rooms)})
	return rooms, nil
}

// EditForm загружает комнату и заполняет форму редактирования.
func (m *RoomManager) EditForm(ctx context.Context, roomID string) (domain.RoomForm, error) {
	if _, err := m.requireLandlord(); err != nil {
		return domain.RoomForm{}, err
	}
	room, err := m.api.GetRoom(ctx, roomID)
	if err != nil {
		return domain.RoomForm{}, err
	}
	return domain.FormFromRoom(room), nil
}

func (m *RoomManager) Get(ctx context.Context, roomID string) (domain.OwnedRoom, error) {
	if _, err := m.requireLandlord(); err != nil {
		return domain.OwnedRoom{}, err
	}
	return m.api.GetRoom(ctx, roomID)
}

func (m *RoomManager) Create(ctx context.Context, form domain.RoomForm) (domain.SavedRoom, error) {
	user, err := m.requireLandlord()
	if err != nil {
		return domain.SavedRoom{}, err
	}
	ucLogger := m.logger(ctx, "CreateRoom", user)
	ucLogger.Info("Use case started", nil)

	payload, err := contracts.ValidateRoomForm(form, m.now())
	if err != nil {
		return domain.SavedRoom{}, err
	}

	saved, err := m.api.CreateRoom(ctx, payload)
	if err != nil {
		ucLogger.Error("Backend failed to create room", err, nil)
		return domain.SavedRoom{}, err
	}
	ucLogger.Info("Use case finished successfully", port.Fields{"room_id": saved.ID})
	return saved, nil
}

func (m *RoomManager) Update(ctx context.Context, roomID string, form domain.RoomForm) (domain.SavedRoom, error) {
	user, err := m.requireLandlord()
	if err != nil {
		return domain.SavedRoom{}, err
	}
	ucLogger := m.logger(ctx, "UpdateRoom", user).WithFields(port.Fields{"room_id": roomID})
	ucLogger.Info("Use case started", nil)

	payload, err := contracts.ValidateRoomForm(form, m.now())
	if err != nil {
		return domain.SavedRoom{}, err
	}

	saved, err := m.api.UpdateRoom(ctx, roomID, payload)
	if err != nil {
		ucLogger.Error("Backend failed to update room", err, nil)
		return domain.SavedRoom{}, err
	}
	ucLogger.Info("Use case finished successfully", nil)
	return saved, nil
}

func (m *RoomManager) Delete(ctx context.Context, roomID string) error {
	user, err := m.requireLandlord()
	if err != nil {
		return err
	}
	ucLogger := m.logger(ctx, "DeleteRoom", user).WithFields(port.Fields{"room_id": roomID})

	if err := m.api.DeleteRoom(ctx, roomID); err != nil {
		ucLogger.Error("Backend failed to delete room", err, nil)
		return err
	}
	ucLogger.Info("Room deleted", nil)
	return nil
}

// RoomBrowser - публичная карточка комнаты.
type RoomBrowser struct {
	api port.SearchAPI
}

func NewRoomBrowser(api port.SearchAPI) *RoomBrowser {
	return &RoomBrowser{api: api}
}

func (b *RoomBrowser) Detail(ctx context.Context, roomID string) (domain.RoomDetail, error) {
	if roomID == "" {
		return domain.RoomDetail{}, domain.NewValidationError(map[string]string{"id": "room id is required"})
	}
	room, err := b.api.RoomDetail(ctx, roomID)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
			"use_case": "RoomDetail",
			"room_id":  roomID,
		}).Warn("Failed to load room detail", port.Fields{"error": err.Error()})
		return domain.RoomDetail{}, err
	}
	return room, nil
}
