package domain

// SlotID names one of the ten fixed sidebar positions.
type SlotID string

const (
	SlotLeft1  SlotID = "left_1"
	SlotLeft2  SlotID = "left_2"
	SlotLeft3  SlotID = "left_3"
	SlotLeft4  SlotID = "left_4"
	SlotLeft5  SlotID = "left_5"
	SlotRight1 SlotID = "right_1"
	SlotRight2 SlotID = "right_2"
	SlotRight3 SlotID = "right_3"
	SlotRight4 SlotID = "right_4"
	SlotRight5 SlotID = "right_5"
)

// AllSlots lists the slots in display order.
var AllSlots = []SlotID{
	SlotLeft1, SlotLeft2, SlotLeft3, SlotLeft4, SlotLeft5,
	SlotRight1, SlotRight2, SlotRight3, SlotRight4, SlotRight5,
}

var slotLabels = map[SlotID]string{
	SlotLeft1:  "Left Sidebar 1",
	SlotLeft2:  "Left Sidebar 2",
	SlotLeft3:  "Left Sidebar 3",
	SlotLeft4:  "Left Sidebar 4",
	SlotLeft5:  "Left Sidebar 5",
	SlotRight1: "Right Sidebar 1",
	SlotRight2: "Right Sidebar 2",
	SlotRight3: "Right Sidebar 3",
	SlotRight4: "Right Sidebar 4",
	SlotRight5: "Right Sidebar 5",
}

func (s SlotID) Valid() bool {
	_, ok := slotLabels[s]
	return ok
}

func (s SlotID) Label() string {
	return slotLabels[s]
}
